// Package metrics implements the multi-symbol trading metric pipeline:
// normalize fetched rows, derive per-day metrics, merge the locally
// stored buy/sell volume split, and aggregate per-symbol summaries.
package metrics

import "time"

// DailyBar is one price/volume/deliverable record for a symbol and day.
// Optional fields are nil when the provider did not supply a resolvable
// column ("unknown", never zero).
type DailyBar struct {
	Date           time.Time
	Symbol         string
	LastPrice      float64
	PrevClose      *float64
	TradedQuantity *float64
	Turnover       *float64
	TradeCount     *float64
	DeliverableQty *float64
}

// SplitRecord is one stored buy/sell volume observation for a calendar day.
type SplitRecord struct {
	// Date carries the stored timestamp; matching is by calendar date only
	Date time.Time
	// BuySell is the stored "<buy>/<sell>" pair
	BuySell string
}

// DerivedRow is one output row per (symbol, date). Nil means undefined
// and renders as "None".
type DerivedRow struct {
	Date    time.Time `json:"date"`
	Symbol  string    `json:"symbol"`
	LTP     float64   `json:"ltp"`
	BuySell *string   `json:"buy_sell_volume_percent"`
	// VWAP is a computation aid for price highlighting, omitted from CSV
	VWAP            *float64 `json:"vwap"`
	DeliveryPercent *float64 `json:"delivery_percent"`
	// Period-over-period percent changes against the previous trading day
	VolumeChangePercent *float64 `json:"trading_volume_percent"`
	ValueChangePercent  *float64 `json:"trading_value_percent"`
	TradesChangePercent *float64 `json:"trades_percent"`
	// Forward N-day averages of the volume and trade-count percent
	// changes, keyed by window size
	VolumeAverages map[int]*float64 `json:"volume_averages,omitempty"`
	TradesAverages map[int]*float64 `json:"trades_averages,omitempty"`
}

// SummaryRow aggregates one symbol's DerivedRow series.
type SummaryRow struct {
	Symbol              string           `json:"symbol"`
	LTPLast             *float64         `json:"ltp_last"`
	LTPMean             *float64         `json:"ltp_mean"`
	BuyPercentMean      *float64         `json:"buy_percent_mean"`
	BuyPercentMax       *float64         `json:"buy_percent_max"`
	DeliveryMean        *float64         `json:"delivery_percent_mean"`
	DeliveryMax         *float64         `json:"delivery_percent_max"`
	DeliveryMin         *float64         `json:"delivery_percent_min"`
	VolumeChangeMean    *float64         `json:"trading_volume_percent_mean"`
	VolumeChangeMax     *float64         `json:"trading_volume_percent_max"`
	ValueChangeMean     *float64         `json:"trading_value_percent_mean"`
	ValueChangeMax      *float64         `json:"trading_value_percent_max"`
	TradesChangeMean    *float64         `json:"trades_percent_mean"`
	TradesChangeMax     *float64         `json:"trades_percent_max"`
	VolumeAverageMeans  map[int]*float64 `json:"volume_average_means,omitempty"`
	TradesAverageMeans  map[int]*float64 `json:"trades_average_means,omitempty"`
}
