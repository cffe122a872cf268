package repository

import (
	"fmt"

	"github.com/marketbots/nsemetricsapi/internal/models"
	"gorm.io/gorm"
)

// InstrumentRepository persists and queries the scrip master
type InstrumentRepository struct {
	DB *gorm.DB
}

// NewInstrumentRepository creates a new InstrumentRepository
func NewInstrumentRepository(db *gorm.DB) *InstrumentRepository {
	return &InstrumentRepository{DB: db}
}

// TruncateInstrumentsTable removes all instruments before a fresh load
func (r *InstrumentRepository) TruncateInstrumentsTable() error {
	return r.DB.Exec(fmt.Sprintf("DELETE FROM %s", models.InstrumentsTableName)).Error
}

// InsertInstruments inserts a batch of scrip master records
func (r *InstrumentRepository) InsertInstruments(instruments []models.InstrumentModel) (int64, error) {
	result := r.DB.CreateInBatches(instruments, 500)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert batch: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// GetInstrumentsRecordCount returns the total number of instruments
func (r *InstrumentRepository) GetInstrumentsRecordCount() (int64, error) {
	var count int64
	err := r.DB.Model(&models.InstrumentModel{}).Count(&count).Error
	return count, err
}

// GetEquityInstruments returns the NSE cash-segment instruments, i.e. rows
// on the NSE segment whose symbol carries the -EQ suffix
func (r *InstrumentRepository) GetEquityInstruments() ([]models.InstrumentModel, error) {
	var instruments []models.InstrumentModel
	err := r.DB.
		Where("exch_seg = ? AND symbol LIKE ?", "NSE", "%-EQ").
		Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}

// GetDerivativeUnderlyingNames returns the distinct underlying names that
// have any stock futures or options contract on NFO
func (r *InstrumentRepository) GetDerivativeUnderlyingNames() ([]string, error) {
	var names []string
	err := r.DB.Model(&models.InstrumentModel{}).
		Distinct("name").
		Where("exch_seg = ? AND instrument_type IN ?", "NFO", []string{"FUTSTK", "OPTSTK"}).
		Where("name <> ''").
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// GetEquityInstrumentsForNames returns the NSE equity rows for the given
// underlying names, ordered by name
func (r *InstrumentRepository) GetEquityInstrumentsForNames(names []string) ([]models.InstrumentModel, error) {
	var instruments []models.InstrumentModel
	err := r.DB.
		Where("exch_seg = ? AND symbol LIKE ? AND name IN ?", "NSE", "%-EQ", names).
		Order("name").
		Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}
