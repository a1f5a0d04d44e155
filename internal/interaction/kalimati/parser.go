package kalimati

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ParseDailyPrices extracts the price table rows. Cells are trimmed but prices keep their
// currency prefix; they are cleaned by the merge pipeline like any other raw source.
func ParseDailyPrices(html string, date time.Time) ([]DailyPrice, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var prices []DailyPrice

	doc.Find("table tbody tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 5 {
			return
		}

		commodity := cleanCell(tds.Eq(0).Text())
		if commodity == "" {
			return
		}

		prices = append(prices, DailyPrice{
			Commodity: commodity,
			Date:      date,
			Unit:      cleanCell(tds.Eq(1).Text()),
			Minimum:   cleanCell(tds.Eq(2).Text()),
			Maximum:   cleanCell(tds.Eq(3).Text()),
			Average:   cleanCell(tds.Eq(4).Text()),
		})
	})

	return prices, nil
}

func cleanCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
