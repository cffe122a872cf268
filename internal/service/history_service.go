package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/marketbots/nsemetricsapi/internal/customerrors"
	"github.com/marketbots/nsemetricsapi/internal/metrics"
	"github.com/marketbots/nsemetricsapi/pkg/utils/zaplogger"
	"github.com/redis/go-redis/v9"
)

const (
	nseBaseURL     = "https://www.nseindia.com"
	nseHistoryPath = "/api/historical/securityArchives"
	nseUserAgent   = "Mozilla/5.0 (iPhone; CPU iPhone OS 18_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.5 Mobile/15E148 Safari/604.1"

	// requestDateLayout is the inclusive DD-MM-YYYY range format the
	// provider expects
	requestDateLayout = "02-01-2006"

	historyCacheTTL       = time.Hour
	historyCacheKeyPrefix = "NM:API:HISTORY:"
)

// HistoryService fetches daily price/volume/deliverable bars from NSE
type HistoryService struct {
	client      *resty.Client
	redisClient *redis.Client
}

// NewHistoryService creates a new history service. The NSE endpoints
// require a warmed-up session cookie and browser headers.
func NewHistoryService(redisClient *redis.Client) *HistoryService {
	client := resty.New().
		SetBaseURL(nseBaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", nseUserAgent)

	return &HistoryService{
		client:      client,
		redisClient: redisClient,
	}
}

// historyResponse is the provider envelope; row columns vary by symbol
// and provider version, so rows stay untyped until alias resolution
type historyResponse struct {
	Data []map[string]interface{} `json:"data"`
}

// FetchDailyBars returns the daily bars for symbol in [fromDate, toDate],
// possibly empty. Results are cached per (symbol, from, to) for one hour.
// A fetch failure returns an error; the caller treats an empty result as
// "no data for this symbol".
func (s *HistoryService) FetchDailyBars(ctx context.Context, symbol string, fromDate, toDate time.Time) ([]metrics.DailyBar, error) {
	cacheKey := fmt.Sprintf("%s%s:%s:%s",
		historyCacheKeyPrefix, symbol,
		fromDate.Format(requestDateLayout), toDate.Format(requestDateLayout))

	if rows, ok := s.cachedRows(ctx, cacheKey); ok {
		return metrics.NormalizeRows(symbol, rows)
	}

	if err := s.warmUp(ctx); err != nil {
		return nil, err
	}

	var payload historyResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetHeader("Referer", fmt.Sprintf("%s/get-quotes/equity?symbol=%s", nseBaseURL, symbol)).
		SetQueryParams(map[string]string{
			"symbol":   symbol,
			"dataType": "priceVolumeDeliverable",
			"series":   "ALL",
			"from":     fromDate.Format(requestDateLayout),
			"to":       toDate.Format(requestDateLayout),
		}).
		SetResult(&payload).
		Get(nseHistoryPath)
	if err != nil {
		return nil, customerrors.Fetchf("history fetch for %s: %v", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, customerrors.Fetchf("history fetch for %s: status %d", symbol, resp.StatusCode())
	}

	s.storeRows(ctx, cacheKey, payload.Data)

	return metrics.NormalizeRows(symbol, payload.Data)
}

// warmUp hits the landing page so the provider sets its session cookies
func (s *HistoryService) warmUp(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Referer", "https://www.google.com/").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		Get("/")
	if err != nil {
		return customerrors.Fetchf("warmup failed: %v", err)
	}
	if !resp.IsSuccess() {
		return customerrors.Fetchf("warmup failed: status %d", resp.StatusCode())
	}
	return nil
}

// cachedRows reads the raw provider rows from redis. Cache failures
// degrade silently to a live fetch.
func (s *HistoryService) cachedRows(ctx context.Context, key string) ([]map[string]interface{}, bool) {
	if s.redisClient == nil {
		return nil, false
	}
	raw, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// storeRows writes the raw provider rows to redis with the cache TTL
func (s *HistoryService) storeRows(ctx context.Context, key string, rows []map[string]interface{}) {
	if s.redisClient == nil {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, key, raw, historyCacheTTL).Err(); err != nil {
		zaplogger.Warn("history cache write failed", zaplogger.Fields{
			"key":   key,
			"error": err.Error(),
		})
	}
}
