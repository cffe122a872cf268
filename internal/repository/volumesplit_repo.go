package repository

import (
	"fmt"
	"time"

	"github.com/marketbots/nsemetricsapi/internal/customerrors"
	"github.com/marketbots/nsemetricsapi/internal/models"
	"gorm.io/gorm"
)

// VolumeSplitRepository is the append-only store for buy/sell volume splits
type VolumeSplitRepository struct {
	DB *gorm.DB
}

// NewVolumeSplitRepository creates a new VolumeSplitRepository
func NewVolumeSplitRepository(db *gorm.DB) *VolumeSplitRepository {
	return &VolumeSplitRepository{DB: db}
}

// RecordSplit appends one observation. Existing rows for the same symbol
// and date are never updated or deduplicated.
func (r *VolumeSplitRepository) RecordSplit(symbol string, timestamp time.Time, buyPercent, sellPercent int) error {
	row := models.VolumeSplitModel{
		Symbol:               symbol,
		Date:                 timestamp.Format("2006-01-02 15:04:05"),
		BuySellVolumePercent: fmt.Sprintf("%d/%d", buyPercent, sellPercent),
	}
	if err := r.DB.Create(&row).Error; err != nil {
		return customerrors.Storagef("save split for %s: %v", symbol, err)
	}
	return nil
}

// QuerySplits returns the rows for symbol whose calendar date falls inside
// [fromDate, toDate], newest date first. The date column holds timestamps,
// so the comparison goes through SQLite's date() casting.
func (r *VolumeSplitRepository) QuerySplits(symbol string, fromDate, toDate time.Time) ([]models.VolumeSplitModel, error) {
	var rows []models.VolumeSplitModel
	err := r.DB.Raw(`
		SELECT symbol, date, buy_sell_volume_percent
		FROM market_data
		WHERE symbol = ? AND date(date) BETWEEN date(?) AND date(?)
		ORDER BY date DESC`,
		symbol, fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"),
	).Scan(&rows).Error
	if err != nil {
		return nil, customerrors.Storagef("query splits for %s: %v", symbol, err)
	}
	return rows, nil
}

// CountSplits returns the number of stored rows for a symbol
func (r *VolumeSplitRepository) CountSplits(symbol string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.VolumeSplitModel{}).Where("symbol = ?", symbol).Count(&count).Error
	return count, err
}
