package models

// VolumeSplitTableName is the name of the table for buy/sell volume splits
var VolumeSplitTableName = "market_data"

// VolumeSplitModel is one appended buy/sell volume observation.
// The table has no primary key: duplicate (symbol, date) rows are legal
// and the read path resolves them (most recently inserted wins).
type VolumeSplitModel struct {
	Symbol string `gorm:"column:symbol" json:"symbol"`
	// Date is stored as a string and compared by calendar date, not timestamp
	Date string `gorm:"column:date" json:"date"`
	// BuySellVolumePercent is the pair formatted as "<buy>/<sell>"
	BuySellVolumePercent string `gorm:"column:buy_sell_volume_percent" json:"buy_sell_volume_percent"`
}

// TableName specifies the table name for the VolumeSplitModel
func (VolumeSplitModel) TableName() string {
	return VolumeSplitTableName
}
