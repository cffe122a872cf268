package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricsContext(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestParseMetricsRequest(t *testing.T) {
	c := metricsContext("s=TCS&s=INFY&from=2024-01-01&to=2024-01-31&window=5&window=10")

	req, err := parseMetricsRequest(c)
	require.NoError(t, err)

	assert.Equal(t, []string{"TCS", "INFY"}, req.Symbols)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), req.FromDate)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), req.ToDate)
	assert.Equal(t, []int{5, 10}, req.Windows)
}

func TestParseMetricsRequestValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"no symbols", "from=2024-01-01&to=2024-01-31"},
		{"missing dates", "s=TCS"},
		{"bad from", "s=TCS&from=01-01-2024&to=2024-01-31"},
		{"bad to", "s=TCS&from=2024-01-01&to=31-01-2024"},
		{"inverted range", "s=TCS&from=2024-01-31&to=2024-01-01"},
		{"bad window", "s=TCS&from=2024-01-01&to=2024-01-31&window=five"},
		{"zero window", "s=TCS&from=2024-01-01&to=2024-01-31&window=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMetricsRequest(metricsContext(tt.query))
			assert.Error(t, err)
		})
	}
}

func TestParseMetricsRequestSameDay(t *testing.T) {
	req, err := parseMetricsRequest(metricsContext("s=TCS&from=2024-01-15&to=2024-01-15"))
	require.NoError(t, err)
	assert.Equal(t, req.FromDate, req.ToDate)
	assert.Empty(t, req.Windows)
}
