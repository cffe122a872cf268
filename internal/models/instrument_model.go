// Package models contains the models for the NSE Metrics API
package models

import "time"

// InstrumentsTableName is the name of the table for instruments
var InstrumentsTableName = "instruments"

// InstrumentModel represents one scrip master record
type InstrumentModel struct {
	Token          string    `gorm:"index" json:"token"`
	Symbol         string    `gorm:"index:idx_exch_seg_symbol,priority:2" json:"symbol"`
	Name           string    `gorm:"index" json:"name"`
	Expiry         string    `json:"expiry"`
	Strike         string    `json:"strike"`
	LotSize        string    `json:"lotsize"`
	InstrumentType string    `json:"instrumenttype"`
	ExchSeg        string    `gorm:"index:idx_exch_seg_symbol,priority:1" json:"exch_seg"`
	TickSize       string    `json:"tick_size"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"-"`
}

// TableName specifies the table name for the InstrumentModel
func (InstrumentModel) TableName() string {
	return InstrumentsTableName
}
