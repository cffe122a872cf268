package service

import (
	"math"
	"time"

	"github.com/marketbots/nsemetricsapi/internal/config"
	"github.com/marketbots/nsemetricsapi/internal/customerrors"
	"github.com/marketbots/nsemetricsapi/internal/repository"
	"github.com/marketbots/nsemetricsapi/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

const (
	quotePath = "/rest/secure/angelbroking/market/v1/quote/"

	// quoteBatchSize is the provider's request-size limit for FULL
	// quote snapshots
	quoteBatchSize = 40
)

// IngestService runs the buy/sell volume ingestion job: it snapshots
// real-time quotes for every F&O underlying's equity token and appends
// one split record per instrument per run.
type IngestService struct {
	instrumentService *InstrumentService
	sessionService    *SessionService
	splitRepo         *repository.VolumeSplitRepository
}

// NewIngestService creates a new ingestion service
func NewIngestService(db *gorm.DB, cfg *config.Config) *IngestService {
	return &IngestService{
		instrumentService: NewInstrumentService(db),
		sessionService:    NewSessionService(db, cfg),
		splitRepo:         repository.NewVolumeSplitRepository(db),
	}
}

// IngestResult reports one ingestion run
type IngestResult struct {
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`
	Saved         int `json:"saved"`
	Failed        int `json:"failed"`
}

type quoteRequest struct {
	Mode           string              `json:"mode"`
	ExchangeTokens map[string][]string `json:"exchangeTokens"`
}

type quoteResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Fetched []quoteInstrument `json:"fetched"`
	} `json:"data"`
}

type quoteInstrument struct {
	TradingSymbol string  `json:"tradingSymbol"`
	Token         string  `json:"token"`
	TotBuyQuan    float64 `json:"totBuyQuan"`
	TotSellQuan   float64 `json:"totSellQuan"`
}

// RunIngestion authenticates, snapshots quotes in token batches and
// appends the computed buy/sell splits. A failed batch is logged and
// skipped; it never aborts the remaining batches.
func (s *IngestService) RunIngestion() (*IngestResult, error) {
	session, err := s.sessionService.GenerateSession()
	if err != nil {
		return nil, err
	}

	if _, err := s.instrumentService.UpdateInstruments(); err != nil {
		zaplogger.Warn("scrip master refresh failed before ingestion", zaplogger.Fields{
			"error": err.Error(),
		})
	}

	tokens, tokenSymbols, err := s.instrumentService.FnoEquityTokens()
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, customerrors.Parsef("no F&O equity tokens available")
	}

	batches := splitTokenBatches(tokens, quoteBatchSize)
	timestamp := time.Now()
	result := &IngestResult{Batches: len(batches)}

	for batchNum, batch := range batches {
		quotes, err := s.fetchQuoteBatch(session.JwtToken, batch)
		if err != nil {
			zaplogger.Warn("quote batch failed", zaplogger.Fields{
				"batch": batchNum + 1,
				"of":    len(batches),
				"error": err.Error(),
			})
			result.FailedBatches++
			continue
		}

		for _, quote := range quotes {
			symbol := CleanSymbol(quote.TradingSymbol)
			if symbol == "" {
				symbol = tokenSymbols[quote.Token]
			}
			if symbol == "" {
				continue
			}

			buyPercent, sellPercent := ComputeBuySellPercent(quote.TotBuyQuan, quote.TotSellQuan)
			if err := s.splitRepo.RecordSplit(symbol, timestamp, buyPercent, sellPercent); err != nil {
				zaplogger.Warn("split save failed", zaplogger.Fields{
					"symbol": symbol,
					"error":  err.Error(),
				})
				result.Failed++
				continue
			}
			result.Saved++
		}
	}

	zaplogger.Info("Ingestion run completed", zaplogger.Fields{
		"batches":        result.Batches,
		"failed_batches": result.FailedBatches,
		"saved":          result.Saved,
		"failed":         result.Failed,
	})

	return result, nil
}

// fetchQuoteBatch requests a FULL quote snapshot for one token batch
func (s *IngestService) fetchQuoteBatch(jwtToken string, batch []string) ([]quoteInstrument, error) {
	var quoteResp quoteResponse
	resp, err := s.sessionService.brokerRequest().
		SetHeader("Authorization", jwtToken).
		SetBody(quoteRequest{
			Mode:           "FULL",
			ExchangeTokens: map[string][]string{"NSE": batch},
		}).
		SetResult(&quoteResp).
		Post(quotePath)
	if err != nil {
		return nil, customerrors.Fetchf("quote request failed: %v", err)
	}
	if !resp.IsSuccess() || !quoteResp.Status {
		return nil, customerrors.Fetchf("quote request rejected: %s", quoteResp.Message)
	}
	return quoteResp.Data.Fetched, nil
}

// ComputeBuySellPercent computes both sides independently from the order
// book quantities. Both are 0 when the book is empty, never an error.
func ComputeBuySellPercent(buyQty, sellQty float64) (int, int) {
	total := buyQty + sellQty
	if total <= 0 {
		return 0, 0
	}
	buyPercent := int(math.Round(buyQty / total * 100))
	sellPercent := int(math.Round(sellQty / total * 100))
	return buyPercent, sellPercent
}

// splitTokenBatches partitions tokens into fixed-size batches
func splitTokenBatches(tokens []string, size int) [][]string {
	if size < 1 || len(tokens) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(tokens)+size-1)/size)
	for i := 0; i < len(tokens); i += size {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		batches = append(batches, tokens[i:end])
	}
	return batches
}
