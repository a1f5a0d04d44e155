package prices

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kalimati/internal/model"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SavePrices upserts prices keyed by commodity, date and unit.
func (that *Repository) SavePrices(ctx context.Context, prices []*model.CommodityPrice) error {
	if len(prices) == 0 {
		return nil
	}

	query := that.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "commodity"}, {Name: "date"}, {Name: "unit"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"minimum":    gorm.Expr("EXCLUDED.minimum"),
				"maximum":    gorm.Expr("EXCLUDED.maximum"),
				"average":    gorm.Expr("EXCLUDED.average"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		},
	)

	if err := query.Create(prices).Error; err != nil {
		return fmt.Errorf("upsert prices in database: %w", err)
	}

	return nil
}

func (that *Repository) CountPrices(ctx context.Context) (int64, error) {
	var count int64
	if err := that.db.WithContext(ctx).Model(&model.CommodityPrice{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count prices in database: %w", err)
	}

	return count, nil
}

// GetLatestPrices returns the prices of a commodity on the most recent date stored for it.
func (that *Repository) GetLatestPrices(ctx context.Context, commodity string) ([]*model.CommodityPrice, error) {
	var prices []*model.CommodityPrice

	latest := that.db.WithContext(ctx).Model(&model.CommodityPrice{}).Select("MAX(date)").Where("commodity = ?", commodity)
	query := that.db.WithContext(ctx).Where("commodity = ? AND date = (?)", commodity, latest).Order("unit")
	if err := query.Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("fetch latest prices from database: %w", err)
	}

	return prices, nil
}
