package metrics

import (
	"math"
	"sort"
	"time"
)

// mergeDateLayout is the calendar-date key used to join bars with splits
const mergeDateLayout = "2006-01-02"

// ComputeMetrics derives the output rows for one symbol.
//
// Bars are sorted ascending by date for the derivative computations and
// the result is returned descending by date for presentation. When more
// than one split record shares a calendar date, the most recently
// inserted one wins (duplicates are legal in the store).
func ComputeMetrics(symbol string, bars []DailyBar, splits []SplitRecord, windows []int) []DerivedRow {
	if len(bars) == 0 {
		return nil
	}

	ordered := make([]DailyBar, 0, len(bars))
	for _, bar := range bars {
		if bar.Date.IsZero() {
			continue
		}
		ordered = append(ordered, bar)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})
	if len(ordered) == 0 {
		return nil
	}

	splitByDate := indexSplitsByDate(splits)

	rows := make([]DerivedRow, len(ordered))
	for i, bar := range ordered {
		row := DerivedRow{
			Date:   bar.Date,
			Symbol: symbol,
			LTP:    bar.LastPrice,
		}

		// VWAP = turnover / quantity, defined only for positive inputs
		if defined(bar.TradedQuantity) && defined(bar.Turnover) &&
			*bar.TradedQuantity > 0 && *bar.Turnover > 0 {
			row.VWAP = ptr(*bar.Turnover / *bar.TradedQuantity)
		}

		if split, ok := splitByDate[bar.Date.Format(mergeDateLayout)]; ok {
			buySell := split.BuySell
			row.BuySell = &buySell
		}

		// Delivery% rounded to two decimals
		if defined(bar.TradedQuantity) && defined(bar.DeliverableQty) && *bar.TradedQuantity > 0 {
			row.DeliveryPercent = ptr(round2(*bar.DeliverableQty / *bar.TradedQuantity * 100))
		}

		if i > 0 {
			prev := ordered[i-1]
			row.VolumeChangePercent = pctChange(bar.TradedQuantity, prev.TradedQuantity)
			row.TradesChangePercent = pctChange(bar.TradeCount, prev.TradeCount)
			row.ValueChangePercent = pctChange(bar.Turnover, prev.Turnover)
		}

		rows[i] = row
	}

	applyForwardAverages(rows, windows)

	// Presentation order is newest first
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}

// indexSplitsByDate keys splits by calendar date, keeping the record with
// the latest stored timestamp for each date (later slice position breaks
// timestamp ties)
func indexSplitsByDate(splits []SplitRecord) map[string]SplitRecord {
	byDate := make(map[string]SplitRecord, len(splits))
	for _, split := range splits {
		key := split.Date.Format(mergeDateLayout)
		existing, ok := byDate[key]
		if !ok || !split.Date.Before(existing.Date) {
			byDate[key] = split
		}
	}
	return byDate
}

// pctChange is the period-over-period relative change in percent.
// Undefined when either value is unknown or the base is zero.
func pctChange(current, previous *float64) *float64 {
	if !defined(current) || !defined(previous) || *previous == 0 {
		return nil
	}
	return ptr((*current - *previous) / *previous * 100)
}

// applyForwardAverages sets, for every requested window N and every row
// index i with at least N rows remaining, the arithmetic mean of the
// defined volume% and trades% values over rows [i, i+N). Rows expects
// ascending date order. Windows are independent of each other.
func applyForwardAverages(rows []DerivedRow, windows []int) {
	if len(windows) == 0 {
		return
	}
	for i := range rows {
		rows[i].VolumeAverages = make(map[int]*float64, len(windows))
		rows[i].TradesAverages = make(map[int]*float64, len(windows))
	}
	for _, window := range dedupeWindows(windows) {
		for i := range rows {
			if i+window > len(rows) {
				continue
			}
			rows[i].VolumeAverages[window] = meanOf(rows[i:i+window], func(r DerivedRow) *float64 {
				return r.VolumeChangePercent
			})
			rows[i].TradesAverages[window] = meanOf(rows[i:i+window], func(r DerivedRow) *float64 {
				return r.TradesChangePercent
			})
		}
	}
}

// meanOf averages the defined values of a window slice, nil when none
func meanOf(window []DerivedRow, pick func(DerivedRow) *float64) *float64 {
	var sum float64
	var n int
	for _, row := range window {
		if v := pick(row); defined(v) {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return ptr(sum / float64(n))
}

func dedupeWindows(windows []int) []int {
	seen := make(map[int]bool, len(windows))
	out := make([]int, 0, len(windows))
	for _, w := range windows {
		if w < 1 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}

func defined(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}

func ptr(v float64) *float64 {
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseSplitRecord converts one stored row into a SplitRecord. Rows whose
// date string does not parse are dropped by the caller.
func ParseSplitRecord(date, pair string) (SplitRecord, bool) {
	t, ok := parseStoredDate(date)
	if !ok {
		return SplitRecord{}, false
	}
	return SplitRecord{Date: t, BuySell: pair}, true
}

var storedDateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02"}

func parseStoredDate(s string) (time.Time, bool) {
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
