package model

import "time"

// CommodityPrice is a cleaned daily price of a commodity.
// Commodity, Date and Unit together are unique.
type CommodityPrice struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Commodity string    `gorm:"column:commodity;not null;uniqueIndex:commodity_date_unit"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:commodity_date_unit"`
	Unit      string    `gorm:"column:unit;not null;uniqueIndex:commodity_date_unit"`
	Minimum   float64   `gorm:"column:minimum"`
	Maximum   float64   `gorm:"column:maximum"`
	Average   float64   `gorm:"column:average"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (*CommodityPrice) TableName() string {
	return "commodity_prices"
}
