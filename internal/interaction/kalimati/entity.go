package kalimati

import (
	"time"

	"kalimati/internal/pipeline"
)

// DailyPrice is one row of the market's daily price table, kept as published.
type DailyPrice struct {
	Commodity string // ex: Tomato Big(Nepali)
	Date      time.Time
	Unit      string // ex: के.जी. or Kg
	Minimum   string // ex: रू ६०
	Maximum   string // ex: रू ७०
	Average   string // ex: रू ६५
}

// Row renders the price in canonical column order for a headerless raw source.
func (p DailyPrice) Row() []string {
	return []string{p.Commodity, p.Date.Format(pipeline.DateLayout), p.Unit, p.Minimum, p.Maximum, p.Average}
}
