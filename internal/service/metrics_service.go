package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/marketbots/nsemetricsapi/internal/metrics"
	"github.com/marketbots/nsemetricsapi/internal/repository"
	"github.com/marketbots/nsemetricsapi/pkg/utils/zaplogger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MetricsService runs the per-symbol metric pipeline: fetch bars, read
// the local volume split, derive metrics, aggregate.
type MetricsService struct {
	historyService *HistoryService
	splitRepo      *repository.VolumeSplitRepository
}

// NewMetricsService creates a new metrics service
func NewMetricsService(db *gorm.DB, redisClient *redis.Client) *MetricsService {
	return &MetricsService{
		historyService: NewHistoryService(redisClient),
		splitRepo:      repository.NewVolumeSplitRepository(db),
	}
}

// MetricsRequest is one user-triggered fetch
type MetricsRequest struct {
	Symbols  []string
	FromDate time.Time
	ToDate   time.Time
	Windows  []int
}

// SymbolFailure is one symbol that produced no rows, with the reason
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// MetricsResult is the combined detail/summary/diagnostics output
type MetricsResult struct {
	Detail   []metrics.DerivedRow `json:"detail"`
	Summary  []metrics.SummaryRow `json:"summary"`
	Failures []SymbolFailure      `json:"failures"`
}

// GetMetrics processes the requested symbols sequentially. Every
// per-symbol error is isolated: it lands in Failures and the remaining
// symbols still complete.
func (s *MetricsService) GetMetrics(ctx context.Context, req MetricsRequest) *MetricsResult {
	result := &MetricsResult{
		Detail:   []metrics.DerivedRow{},
		Summary:  []metrics.SummaryRow{},
		Failures: []SymbolFailure{},
	}

	symbols := normalizeSymbols(req.Symbols)
	for i, symbol := range symbols {
		zaplogger.Info("Fetching symbol", zaplogger.Fields{
			"symbol":   symbol,
			"progress": fmt.Sprintf("%d/%d", i+1, len(symbols)),
		})

		rows, err := s.computeSymbol(ctx, symbol, req)
		if err != nil {
			zaplogger.Warn("symbol failed", zaplogger.Fields{
				"symbol": symbol,
				"error":  err.Error(),
			})
			result.Failures = append(result.Failures, SymbolFailure{
				Symbol: symbol,
				Reason: err.Error(),
			})
			continue
		}
		if len(rows) == 0 {
			result.Failures = append(result.Failures, SymbolFailure{
				Symbol: symbol,
				Reason: "no data found for symbol",
			})
			continue
		}
		result.Detail = append(result.Detail, rows...)
	}

	result.Summary = metrics.Summarize(result.Detail)
	return result
}

// computeSymbol runs the pipeline for one symbol. Storage failures on
// the split read degrade to "no local split data", not an error.
func (s *MetricsService) computeSymbol(ctx context.Context, symbol string, req MetricsRequest) ([]metrics.DerivedRow, error) {
	bars, err := s.historyService.FetchDailyBars(ctx, symbol, req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}

	splits := s.querySplits(symbol, req.FromDate, req.ToDate)

	return metrics.ComputeMetrics(symbol, bars, splits, req.Windows), nil
}

// querySplits reads the stored buy/sell splits, empty on any failure
func (s *MetricsService) querySplits(symbol string, fromDate, toDate time.Time) []metrics.SplitRecord {
	rows, err := s.splitRepo.QuerySplits(symbol, fromDate, toDate)
	if err != nil {
		zaplogger.Warn("split query failed, continuing without local data", zaplogger.Fields{
			"symbol": symbol,
			"error":  err.Error(),
		})
		return nil
	}

	splits := make([]metrics.SplitRecord, 0, len(rows))
	for _, row := range rows {
		record, ok := metrics.ParseSplitRecord(row.Date, row.BuySellVolumePercent)
		if !ok {
			continue
		}
		splits = append(splits, record)
	}
	return splits
}

// WriteCSV streams the detail rows as CSV
func (s *MetricsService) WriteCSV(w io.Writer, result *MetricsResult, windows []int) error {
	return metrics.WriteCSV(w, result.Detail, windows)
}

// normalizeSymbols trims, upper-cases and deduplicates the input while
// preserving order
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		out = append(out, symbol)
	}
	return out
}
