package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func bar(n int, ltp, qty, turnover, trades, deliverable float64) DailyBar {
	return DailyBar{
		Date:           day(n),
		Symbol:         "TCS",
		LastPrice:      ltp,
		TradedQuantity: ptr(qty),
		Turnover:       ptr(turnover),
		TradeCount:     ptr(trades),
		DeliverableQty: ptr(deliverable),
	}
}

// ascending reverses the descending output for easier assertions
func ascending(rows []DerivedRow) []DerivedRow {
	out := make([]DerivedRow, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out
}

func TestComputeMetricsOrdering(t *testing.T) {
	// Input deliberately unsorted
	bars := []DailyBar{
		bar(3, 110, 300, 33000, 30, 150),
		bar(1, 100, 100, 10000, 10, 50),
		bar(2, 105, 200, 21000, 20, 100),
	}

	rows := ComputeMetrics("TCS", bars, nil, nil)
	require.Len(t, rows, 3)

	// Output is newest first
	assert.Equal(t, day(3), rows[0].Date)
	assert.Equal(t, day(2), rows[1].Date)
	assert.Equal(t, day(1), rows[2].Date)
}

func TestComputeMetricsPercentChanges(t *testing.T) {
	bars := []DailyBar{
		bar(1, 100, 100, 10000, 10, 50),
		bar(2, 105, 150, 21000, 30, 100),
		bar(3, 110, 300, 42000, 15, 150),
	}

	rows := ascending(ComputeMetrics("TCS", bars, nil, nil))
	require.Len(t, rows, 3)

	// Earliest row has no previous day, all changes undefined
	assert.Nil(t, rows[0].VolumeChangePercent)
	assert.Nil(t, rows[0].ValueChangePercent)
	assert.Nil(t, rows[0].TradesChangePercent)

	// (150-100)/100*100 = 50
	require.NotNil(t, rows[1].VolumeChangePercent)
	assert.InDelta(t, 50, *rows[1].VolumeChangePercent, 1e-9)
	// (21000-10000)/10000*100 = 110
	require.NotNil(t, rows[1].ValueChangePercent)
	assert.InDelta(t, 110, *rows[1].ValueChangePercent, 1e-9)
	// (30-10)/10*100 = 200
	require.NotNil(t, rows[1].TradesChangePercent)
	assert.InDelta(t, 200, *rows[1].TradesChangePercent, 1e-9)

	// (300-150)/150*100 = 100, (15-30)/30*100 = -50
	require.NotNil(t, rows[2].VolumeChangePercent)
	assert.InDelta(t, 100, *rows[2].VolumeChangePercent, 1e-9)
	require.NotNil(t, rows[2].TradesChangePercent)
	assert.InDelta(t, -50, *rows[2].TradesChangePercent, 1e-9)
}

func TestComputeMetricsVolumeDropToZero(t *testing.T) {
	// Volumes 100 -> 150 -> 0: +50%, then -100%. The day after a zero
	// base the change is undefined, not infinite.
	bars := []DailyBar{
		bar(1, 100, 100, 10000, 10, 50),
		bar(2, 100, 150, 15000, 10, 50),
		bar(3, 100, 0, 0, 10, 50),
		bar(4, 100, 200, 20000, 10, 50),
	}

	rows := ascending(ComputeMetrics("TCS", bars, nil, nil))
	require.Len(t, rows, 4)

	assert.Nil(t, rows[0].VolumeChangePercent)
	require.NotNil(t, rows[1].VolumeChangePercent)
	assert.InDelta(t, 50, *rows[1].VolumeChangePercent, 1e-9)
	require.NotNil(t, rows[2].VolumeChangePercent)
	assert.InDelta(t, -100, *rows[2].VolumeChangePercent, 1e-9)
	assert.Nil(t, rows[3].VolumeChangePercent, "zero base must be undefined")

	// Delivery% is undefined on the zero-volume day
	assert.Nil(t, rows[2].DeliveryPercent)
}

func TestComputeMetricsVWAP(t *testing.T) {
	bars := []DailyBar{
		bar(1, 100, 400, 41000, 10, 50),
		bar(2, 100, 0, 0, 10, 50),
	}
	bars = append(bars, DailyBar{Date: day(3), Symbol: "TCS", LastPrice: 100})

	rows := ascending(ComputeMetrics("TCS", bars, nil, nil))
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].VWAP)
	assert.InDelta(t, 102.5, *rows[0].VWAP, 1e-9)
	// VWAP * quantity recovers the turnover
	assert.InDelta(t, 41000, *rows[0].VWAP*400, 1e-6)

	assert.Nil(t, rows[1].VWAP, "zero volume has no VWAP")
	assert.Nil(t, rows[2].VWAP, "missing columns have no VWAP")
}

func TestComputeMetricsDeliveryPercent(t *testing.T) {
	bars := []DailyBar{
		bar(1, 100, 300, 30000, 10, 100),
		bar(2, 100, 3000, 300000, 10, 1000),
	}

	rows := ascending(ComputeMetrics("TCS", bars, nil, nil))
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].DeliveryPercent)
	assert.InDelta(t, 33.33, *rows[0].DeliveryPercent, 1e-9, "rounded to two decimals")
	require.NotNil(t, rows[1].DeliveryPercent)
	assert.GreaterOrEqual(t, *rows[1].DeliveryPercent, 0.0)
	assert.LessOrEqual(t, *rows[1].DeliveryPercent, 100.0)
}

func TestComputeMetricsSplitMerge(t *testing.T) {
	bars := []DailyBar{
		bar(1, 100, 100, 10000, 10, 50),
		bar(2, 100, 100, 10000, 10, 50),
		bar(3, 100, 100, 10000, 10, 50),
	}
	splits := []SplitRecord{
		{Date: time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), BuySell: "60/40"},
		// Two observations on day 2, the later insert wins
		{Date: time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC), BuySell: "55/45"},
		{Date: time.Date(2024, time.January, 2, 15, 0, 0, 0, time.UTC), BuySell: "48/52"},
	}

	rows := ascending(ComputeMetrics("TCS", bars, splits, nil))
	require.Len(t, rows, 3)

	require.NotNil(t, rows[0].BuySell)
	assert.Equal(t, "60/40", *rows[0].BuySell)
	require.NotNil(t, rows[1].BuySell)
	assert.Equal(t, "48/52", *rows[1].BuySell)
	assert.Nil(t, rows[2].BuySell, "unmatched dates stay undefined")
}

func TestComputeMetricsEmptySplitStore(t *testing.T) {
	bars := []DailyBar{
		bar(1, 100, 100, 10000, 10, 50),
		bar(2, 100, 200, 20000, 20, 100),
	}

	rows := ComputeMetrics("TCS", bars, nil, nil)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Nil(t, row.BuySell)
	}
}

func TestComputeMetricsForwardAverages(t *testing.T) {
	// Volumes 100, 150, 0: changes nil, +50, -100
	bars := []DailyBar{
		bar(1, 100, 100, 10000, 10, 50),
		bar(2, 150, 150, 22500, 20, 75),
		bar(3, 120, 0, 0, 5, 0),
	}

	rows := ascending(ComputeMetrics("TCS", bars, nil, []int{2}))
	require.Len(t, rows, 3)

	// Window over rows [0,1]: only +50 defined
	require.NotNil(t, rows[0].VolumeAverages[2])
	assert.InDelta(t, 50, *rows[0].VolumeAverages[2], 1e-9)

	// Window over rows [1,2]: mean(+50, -100) = -25
	require.NotNil(t, rows[1].VolumeAverages[2])
	assert.InDelta(t, -25, *rows[1].VolumeAverages[2], 1e-9)

	// Fewer than 2 rows remain
	assert.Nil(t, rows[2].VolumeAverages[2])
}

func TestComputeMetricsWindowLargerThanSeries(t *testing.T) {
	bars := []DailyBar{
		bar(1, 100, 100, 10000, 10, 50),
		bar(2, 100, 150, 15000, 20, 50),
		bar(3, 100, 200, 20000, 30, 50),
	}

	rows := ComputeMetrics("TCS", bars, nil, []int{5})
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Nil(t, row.VolumeAverages[5])
		assert.Nil(t, row.TradesAverages[5])
	}
}

func TestComputeMetricsTCSScenario(t *testing.T) {
	// Volumes 100, 150, 0 over three days
	bars := []DailyBar{
		{Date: day(1), Symbol: "TCS", LastPrice: 3500, TradedQuantity: ptr(100.0), DeliverableQty: ptr(40.0)},
		{Date: day(2), Symbol: "TCS", LastPrice: 3510, TradedQuantity: ptr(150.0), DeliverableQty: ptr(60.0)},
		{Date: day(3), Symbol: "TCS", LastPrice: 3490, TradedQuantity: ptr(0.0), DeliverableQty: ptr(0.0)},
	}

	rows := ascending(ComputeMetrics("TCS", bars, nil, nil))
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].VolumeChangePercent)
	require.NotNil(t, rows[1].VolumeChangePercent)
	assert.InDelta(t, 50, *rows[1].VolumeChangePercent, 1e-9)
	require.NotNil(t, rows[2].VolumeChangePercent)
	assert.InDelta(t, -100, *rows[2].VolumeChangePercent, 1e-9)

	// Zero volume on day 3 leaves delivery% undefined
	assert.Nil(t, rows[2].DeliveryPercent)
}

func TestComputeMetricsDropsZeroDates(t *testing.T) {
	bars := []DailyBar{
		bar(1, 100, 100, 10000, 10, 50),
		{Symbol: "TCS", LastPrice: 99},
	}

	rows := ComputeMetrics("TCS", bars, nil, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, day(1), rows[0].Date)
}

func TestComputeMetricsEmptyInput(t *testing.T) {
	assert.Nil(t, ComputeMetrics("TCS", nil, nil, nil))
}

func TestParseSplitRecord(t *testing.T) {
	tests := []struct {
		name string
		date string
		ok   bool
		want time.Time
	}{
		{"stored timestamp", "2024-01-02 15:04:05", true, time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"date only", "2024-01-02", true, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"garbage", "yesterday", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := ParseSplitRecord(tt.date, "60/40")
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, record.Date)
				assert.Equal(t, "60/40", record.BuySell)
			}
		})
	}
}

func TestPctChange(t *testing.T) {
	got := pctChange(ptr(150), ptr(100))
	require.NotNil(t, got)
	assert.InDelta(t, 50, *got, 1e-9)

	assert.Nil(t, pctChange(ptr(150), ptr(0)))
	assert.Nil(t, pctChange(nil, ptr(100)))
	assert.Nil(t, pctChange(ptr(150), nil))

	nan := math.NaN()
	assert.Nil(t, pctChange(ptr(150), &nan))
}

func TestDedupeWindows(t *testing.T) {
	assert.Equal(t, []int{2, 5, 7}, dedupeWindows([]int{5, 2, 5, 7, 2}))
	assert.Empty(t, dedupeWindows([]int{0, -3}))
}
