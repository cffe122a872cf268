package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/marketbots/nsemetricsapi/internal/customerrors"
)

// Column names are not fixed across symbols and provider versions. Each
// canonical field resolves against an ordered list of acceptable source
// names, first match wins. The CH_* names are the raw NSE archive keys.
var (
	dateAliases        = []string{"Date", "CH_TIMESTAMP", "mTIMESTAMP"}
	lastPriceAliases   = []string{"LastPrice", "LTP", "ClosePrice", "Close", "CH_LAST_TRADED_PRICE", "CH_CLOSING_PRICE"}
	prevCloseAliases   = []string{"PrevClose", "PreviousClose", "CH_PREVIOUS_CLS_PRICE"}
	quantityAliases    = []string{"TotalTradedQuantity", "TradedQuantity", "Volume", "CH_TOT_TRADED_QTY"}
	turnoverAliases    = []string{"TurnoverInRs", "Turnover", "CH_TOT_TRADED_VAL"}
	tradeCountAliases  = []string{"NoofTrades", "No.ofTrades", "Trades", "CH_TOTAL_TRADES"}
	deliverableAliases = []string{"DeliverableQty", "DeliverableQuantity", "COP_DELIV_QTY"}
)

// barDateLayouts are the date formats seen in provider rows, tried in order
var barDateLayouts = []string{"02-Jan-2006", "2006-01-02", "02-01-2006"}

// resolveColumn returns the first alias present in columns
func resolveColumn(columns map[string]bool, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if columns[alias] {
			return alias, true
		}
	}
	return "", false
}

// normalizeKey strips spaces from a provider column name
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), " ", "")
}

// toNumber coerces a provider cell to a float. Strings may carry comma
// grouping. Unparseable or absent cells are nil.
func toNumber(v interface{}) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" || s == "-" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// parseBarDate parses a provider date cell, trying the known layouts
func parseBarDate(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range barDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeRows converts raw provider rows into DailyBars for one symbol.
// Column aliases are resolved once per batch against the first row. A
// missing last-price column fails the whole symbol; missing optional
// columns leave the corresponding field nil for every row. Rows whose
// date does not parse are dropped.
func NormalizeRows(symbol string, rows []map[string]interface{}) ([]DailyBar, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	// Build the column set from the first row, with spaces stripped
	columns := make(map[string]bool, len(rows[0]))
	for key := range rows[0] {
		columns[normalizeKey(key)] = true
	}

	dateCol, ok := resolveColumn(columns, dateAliases)
	if !ok {
		return nil, customerrors.Parsef("could not resolve date column for %s", symbol)
	}
	ltpCol, ok := resolveColumn(columns, lastPriceAliases)
	if !ok {
		return nil, customerrors.Parsef("could not resolve last price column for %s", symbol)
	}
	prevCloseCol, _ := resolveColumn(columns, prevCloseAliases)
	quantityCol, _ := resolveColumn(columns, quantityAliases)
	turnoverCol, _ := resolveColumn(columns, turnoverAliases)
	tradeCountCol, _ := resolveColumn(columns, tradeCountAliases)
	deliverableCol, _ := resolveColumn(columns, deliverableAliases)

	bars := make([]DailyBar, 0, len(rows))
	for _, raw := range rows {
		row := make(map[string]interface{}, len(raw))
		for key, value := range raw {
			row[normalizeKey(key)] = value
		}

		date, ok := parseBarDate(row[dateCol])
		if !ok {
			continue
		}
		ltp := toNumber(row[ltpCol])
		if ltp == nil {
			continue
		}

		bar := DailyBar{
			Date:      date,
			Symbol:    symbol,
			LastPrice: *ltp,
		}
		if prevCloseCol != "" {
			bar.PrevClose = toNumber(row[prevCloseCol])
		}
		if quantityCol != "" {
			bar.TradedQuantity = toNumber(row[quantityCol])
		}
		if turnoverCol != "" {
			bar.Turnover = toNumber(row[turnoverCol])
		}
		if tradeCountCol != "" {
			bar.TradeCount = toNumber(row[tradeCountCol])
		}
		if deliverableCol != "" {
			bar.DeliverableQty = toNumber(row[deliverableCol])
		}
		bars = append(bars, bar)
	}

	return bars, nil
}
