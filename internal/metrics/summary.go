package metrics

import (
	"sort"
	"strconv"
	"strings"
)

// Summarize groups rows by symbol and aggregates each series into one
// SummaryRow. Grouping is by exact symbol. Output is sorted by symbol.
func Summarize(rows []DerivedRow) []SummaryRow {
	grouped := make(map[string][]DerivedRow)
	for _, row := range rows {
		grouped[row.Symbol] = append(grouped[row.Symbol], row)
	}

	symbols := make([]string, 0, len(grouped))
	for symbol := range grouped {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	summaries := make([]SummaryRow, 0, len(symbols))
	for _, symbol := range symbols {
		series := append([]DerivedRow(nil), grouped[symbol]...)
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Date.Before(series[j].Date)
		})
		summaries = append(summaries, summarizeSeries(symbol, series))
	}
	return summaries
}

// summarizeSeries aggregates one symbol's rows, ascending date order
func summarizeSeries(symbol string, series []DerivedRow) SummaryRow {
	summary := SummaryRow{Symbol: symbol}

	ltps := make([]*float64, len(series))
	buys := make([]*float64, len(series))
	for i, row := range series {
		ltp := row.LTP
		ltps[i] = &ltp
		buys[i] = ParseBuyPercent(row.BuySell)
	}

	if len(series) > 0 {
		last := series[len(series)-1].LTP
		summary.LTPLast = &last
	}
	summary.LTPMean = mean(ltps)
	summary.BuyPercentMean = mean(buys)
	summary.BuyPercentMax = max(buys)

	summary.DeliveryMean = mean(pick(series, func(r DerivedRow) *float64 { return r.DeliveryPercent }))
	summary.DeliveryMax = max(pick(series, func(r DerivedRow) *float64 { return r.DeliveryPercent }))
	summary.DeliveryMin = min(pick(series, func(r DerivedRow) *float64 { return r.DeliveryPercent }))

	volumeChanges := pick(series, func(r DerivedRow) *float64 { return r.VolumeChangePercent })
	summary.VolumeChangeMean = mean(volumeChanges)
	summary.VolumeChangeMax = max(volumeChanges)

	valueChanges := pick(series, func(r DerivedRow) *float64 { return r.ValueChangePercent })
	summary.ValueChangeMean = mean(valueChanges)
	summary.ValueChangeMax = max(valueChanges)

	tradesChanges := pick(series, func(r DerivedRow) *float64 { return r.TradesChangePercent })
	summary.TradesChangeMean = mean(tradesChanges)
	summary.TradesChangeMax = max(tradesChanges)

	windows := collectWindows(series)
	if len(windows) > 0 {
		summary.VolumeAverageMeans = make(map[int]*float64, len(windows))
		summary.TradesAverageMeans = make(map[int]*float64, len(windows))
		for _, window := range windows {
			summary.VolumeAverageMeans[window] = mean(pick(series, func(r DerivedRow) *float64 {
				return r.VolumeAverages[window]
			}))
			summary.TradesAverageMeans[window] = mean(pick(series, func(r DerivedRow) *float64 {
				return r.TradesAverages[window]
			}))
		}
	}

	return summary
}

// ParseBuyPercent extracts the buy side of a "<buy>/<sell>" pair
func ParseBuyPercent(pair *string) *float64 {
	if pair == nil {
		return nil
	}
	parts := strings.SplitN(*pair, "/", 2)
	if len(parts) != 2 {
		return nil
	}
	buy, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil
	}
	return &buy
}

func collectWindows(series []DerivedRow) []int {
	seen := make(map[int]bool)
	for _, row := range series {
		for window := range row.VolumeAverages {
			seen[window] = true
		}
	}
	windows := make([]int, 0, len(seen))
	for window := range seen {
		windows = append(windows, window)
	}
	sort.Ints(windows)
	return windows
}

func pick(series []DerivedRow, f func(DerivedRow) *float64) []*float64 {
	out := make([]*float64, len(series))
	for i, row := range series {
		out[i] = f(row)
	}
	return out
}

func mean(values []*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if defined(v) {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return ptr(sum / float64(n))
}

func max(values []*float64) *float64 {
	var best *float64
	for _, v := range values {
		if defined(v) && (best == nil || *v > *best) {
			best = ptr(*v)
		}
	}
	return best
}

func min(values []*float64) *float64 {
	var best *float64
	for _, v := range values {
		if defined(v) && (best == nil || *v < *best) {
			best = ptr(*v)
		}
	}
	return best
}
