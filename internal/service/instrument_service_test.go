package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marketbots/nsemetricsapi/internal/models"
	"github.com/marketbots/nsemetricsapi/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InstrumentModel{}, &models.VolumeSplitModel{}))
	return db
}

func TestCleanSymbol(t *testing.T) {
	tests := []struct{ in, want string }{
		{"TCS-EQ", "TCS"},
		{" INFY-EQ ", "INFY"},
		{"M&M-EQ", "M&M"},
		{"SBIN", "SBIN"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanSymbol(tt.in), tt.in)
	}
}

func TestFnoEquityTokens(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewInstrumentRepository(db)

	_, err := repo.InsertInstruments([]models.InstrumentModel{
		{Token: "11536", Symbol: "TCS-EQ", Name: "TCS", ExchSeg: "NSE"},
		{Token: "1594", Symbol: "INFY-EQ", Name: "INFY", ExchSeg: "NSE"},
		{Token: "14366", Symbol: "IDEA-EQ", Name: "IDEA", ExchSeg: "NSE"},
		{Token: "46376", Symbol: "TCS24JANFUT", Name: "TCS", ExchSeg: "NFO", InstrumentType: "FUTSTK"},
		{Token: "46377", Symbol: "INFY24JAN1500CE", Name: "INFY", ExchSeg: "NFO", InstrumentType: "OPTSTK"},
	})
	require.NoError(t, err)

	svc := NewInstrumentService(db)
	tokens, tokenSymbols, err := svc.FnoEquityTokens()
	require.NoError(t, err)

	// IDEA has no stock derivative, only TCS and INFY qualify
	assert.ElementsMatch(t, []string{"11536", "1594"}, tokens)
	assert.Equal(t, "TCS", tokenSymbols["11536"])
	assert.Equal(t, "INFY", tokenSymbols["1594"])
}

func TestFnoEquityTokensEmpty(t *testing.T) {
	svc := NewInstrumentService(openTestDB(t))

	tokens, tokenSymbols, err := svc.FnoEquityTokens()
	require.NoError(t, err)
	assert.Nil(t, tokens)
	assert.Nil(t, tokenSymbols)
}
