package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marketbots/nsemetricsapi/internal/models"
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

func TestRecordSplitAppendsDuplicates(t *testing.T) {
	repo := NewVolumeSplitRepository(openTestDB(t))

	ts := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.RecordSplit("TCS", ts, 60, 40))
	require.NoError(t, repo.RecordSplit("TCS", ts.Add(30*time.Minute), 55, 45))
	require.NoError(t, repo.RecordSplit("TCS", ts.Add(30*time.Minute), 55, 45))

	count, err := repo.CountSplits("TCS")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "identical rows are kept, never deduplicated")
}

func TestQuerySplitsRangeAndOrder(t *testing.T) {
	repo := NewVolumeSplitRepository(openTestDB(t))

	days := []struct {
		ts   time.Time
		pair [2]int
	}{
		{time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), [2]int{60, 40}},
		{time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), [2]int{55, 45}},
		{time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), [2]int{48, 52}},
	}
	for _, d := range days {
		require.NoError(t, repo.RecordSplit("TCS", d.ts, d.pair[0], d.pair[1]))
	}
	require.NoError(t, repo.RecordSplit("INFY", days[1].ts, 50, 50))

	rows, err := repo.QuerySplits("TCS",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2, "range is inclusive on both ends, other symbols excluded")

	// Newest date first
	assert.Equal(t, "55/45", rows[0].BuySellVolumePercent)
	assert.Equal(t, "60/40", rows[1].BuySellVolumePercent)
	assert.Equal(t, "2024-01-02 10:00:00", rows[0].Date)
}

func TestQuerySplitsEmpty(t *testing.T) {
	repo := NewVolumeSplitRepository(openTestDB(t))

	rows, err := repo.QuerySplits("TCS",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
