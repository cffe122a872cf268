// Package service contains the service layer for the NSE Metrics API
package service

import (
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/marketbots/nsemetricsapi/internal/customerrors"
	"github.com/marketbots/nsemetricsapi/internal/models"
	"github.com/marketbots/nsemetricsapi/internal/repository"
	"github.com/marketbots/nsemetricsapi/pkg/utils/state"
	"github.com/marketbots/nsemetricsapi/pkg/utils/zaplogger"
	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

var scripMasterUpdatedAtKey = "SCRIP_MASTER_UPDATED_AT"

const (
	scripMasterURL = "https://margincalculator.angelone.in/OpenAPI_File/files/OpenAPIScripMaster.json"
	// equitySuffix marks cash-segment symbols in the scrip master
	equitySuffix = "-EQ"
	// scripMasterMaxAge bounds how long the persisted scrip master is trusted
	scripMasterMaxAge = time.Hour

	equitySymbolsCacheKey = "equity_symbols"
)

// InstrumentService manages the scrip master and the symbol universe
type InstrumentService struct {
	repo        *repository.InstrumentRepository
	state       *state.State
	client      *resty.Client
	symbolCache *gocache.Cache
}

// NewInstrumentService creates a new instrument service
func NewInstrumentService(db *gorm.DB) *InstrumentService {
	stateManager, err := state.NewState(db)
	if err != nil {
		zaplogger.Fatal("failed to create state manager", zaplogger.Fields{"error": err})
	}
	return &InstrumentService{
		repo:        repository.NewInstrumentRepository(db),
		state:       stateManager,
		client:      resty.New().SetTimeout(10 * time.Second),
		symbolCache: gocache.New(1*time.Hour, 10*time.Minute),
	}
}

// UpdateInstruments refreshes the scrip master when the persisted copy is
// older than scripMasterMaxAge. Returns the resulting record count.
func (s *InstrumentService) UpdateInstruments() (int64, error) {
	updatedAtValue, err := s.state.Get(scripMasterUpdatedAtKey)
	if err == nil && !s.isUpdateRequired(updatedAtValue) {
		zaplogger.Info("Scrip master update not required", zaplogger.Fields{
			scripMasterUpdatedAtKey: updatedAtValue,
		})
		return s.repo.GetInstrumentsRecordCount()
	}

	var instruments []models.InstrumentModel
	resp, err := s.client.R().
		SetResult(&instruments).
		Get(scripMasterURL)
	if err != nil {
		return 0, customerrors.Fetchf("failed to fetch scrip master: %v", err)
	}
	if !resp.IsSuccess() {
		return 0, customerrors.Fetchf("failed to fetch scrip master: status %d", resp.StatusCode())
	}
	if len(instruments) == 0 {
		return 0, customerrors.Parsef("scrip master is empty")
	}

	if err := s.repo.TruncateInstrumentsTable(); err != nil {
		return 0, customerrors.Storagef("failed to truncate table: %v", err)
	}

	totalInserted, err := s.repo.InsertInstruments(instruments)
	if err != nil {
		return totalInserted, customerrors.Storagef("failed to insert instruments: %v", err)
	}

	if err := s.state.Set(scripMasterUpdatedAtKey, time.Now().Format("2006-01-02 15:04:05")); err != nil {
		return 0, customerrors.Storagef("failed to update state: %v", err)
	}

	// The symbol universe is derived from the scrip master
	s.symbolCache.Delete(equitySymbolsCacheKey)

	zaplogger.Info("Scrip master updated", zaplogger.Fields{
		"totalInserted": totalInserted,
	})

	return s.repo.GetInstrumentsRecordCount()
}

// isUpdateRequired checks the age of the persisted scrip master
func (s *InstrumentService) isUpdateRequired(lastUpdatedAt string) bool {
	lastUpdatedAtTime, err := time.Parse("2006-01-02 15:04:05", lastUpdatedAt)
	if err != nil {
		return true // If we can't parse the time, assume update is needed
	}
	return time.Since(lastUpdatedAtTime) >= scripMasterMaxAge
}

// ListEquitySymbols returns the sorted, deduplicated set of NSE equity
// symbols with the -EQ suffix stripped. On failure it returns an empty
// set and a recoverable fetch error; the caller keeps manual symbol
// entry as a fallback path.
func (s *InstrumentService) ListEquitySymbols() ([]string, error) {
	if cached, found := s.symbolCache.Get(equitySymbolsCacheKey); found {
		return cached.([]string), nil
	}

	if _, err := s.UpdateInstruments(); err != nil {
		zaplogger.Warn("scrip master refresh failed, using persisted copy", zaplogger.Fields{
			"error": err.Error(),
		})
	}

	instruments, err := s.repo.GetEquityInstruments()
	if err != nil {
		return []string{}, customerrors.Fetchf("failed to list equity symbols: %v", err)
	}

	seen := make(map[string]bool, len(instruments))
	symbols := make([]string, 0, len(instruments))
	for _, instrument := range instruments {
		symbol := CleanSymbol(instrument.Symbol)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	s.symbolCache.Set(equitySymbolsCacheKey, symbols, gocache.DefaultExpiration)
	return symbols, nil
}

// FnoEquityTokens returns the NSE equity tokens for every underlying that
// has a stock futures or options contract, plus a token-to-symbol map.
func (s *InstrumentService) FnoEquityTokens() ([]string, map[string]string, error) {
	names, err := s.repo.GetDerivativeUnderlyingNames()
	if err != nil {
		return nil, nil, customerrors.Storagef("failed to get derivative underlyings: %v", err)
	}
	if len(names) == 0 {
		return nil, nil, nil
	}

	instruments, err := s.repo.GetEquityInstrumentsForNames(names)
	if err != nil {
		return nil, nil, customerrors.Storagef("failed to get equity instruments: %v", err)
	}

	tokenSymbols := make(map[string]string, len(instruments))
	tokens := make([]string, 0, len(instruments))
	for _, instrument := range instruments {
		if instrument.Token == "" {
			continue
		}
		if _, ok := tokenSymbols[instrument.Token]; ok {
			continue
		}
		tokenSymbols[instrument.Token] = CleanSymbol(instrument.Symbol)
		tokens = append(tokens, instrument.Token)
	}

	return tokens, tokenSymbols, nil
}

// CleanSymbol strips the equity suffix and surrounding whitespace
func CleanSymbol(symbol string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(symbol), equitySuffix))
}
