package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/marketbots/nsemetricsapi/internal/service"
	"github.com/marketbots/nsemetricsapi/pkg/utils/response"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const queryDateLayout = "2006-01-02"

type MetricsHandler struct {
	MetricsService *service.MetricsService
}

func NewMetricsHandler(db *gorm.DB, redisClient *redis.Client) *MetricsHandler {
	return &MetricsHandler{
		MetricsService: service.NewMetricsService(db, redisClient),
	}
}

// GetMetrics returns the detail rows, per-symbol summaries and failures
// for the requested symbols, date range and average windows
func (h *MetricsHandler) GetMetrics(c echo.Context) error {
	req, err := parseMetricsRequest(c)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", err.Error())
	}

	result := h.MetricsService.GetMetrics(c.Request().Context(), *req)
	return response.SuccessResponse(c, result)
}

// GetMetricsCSV streams the detail rows as a CSV attachment
func (h *MetricsHandler) GetMetricsCSV(c echo.Context) error {
	req, err := parseMetricsRequest(c)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", err.Error())
	}

	result := h.MetricsService.GetMetrics(c.Request().Context(), *req)

	var buf bytes.Buffer
	if err := h.MetricsService.WriteCSV(&buf, result, req.Windows); err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}

	filename := fmt.Sprintf("nse_trading_metrics_%s_to_%s.csv",
		req.FromDate.Format(queryDateLayout), req.ToDate.Format(queryDateLayout))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// parseMetricsRequest validates the shared query parameters
func parseMetricsRequest(c echo.Context) (*service.MetricsRequest, error) {
	symbols := c.QueryParams()["s"]
	if len(symbols) == 0 {
		return nil, fmt.Errorf("`s` is required, at least one symbol")
	}

	fromStr := c.QueryParam("from")
	toStr := c.QueryParam("to")
	if fromStr == "" || toStr == "" {
		return nil, fmt.Errorf("`from` and `to` are required, format YYYY-MM-DD")
	}
	fromDate, err := time.Parse(queryDateLayout, fromStr)
	if err != nil {
		return nil, fmt.Errorf("invalid `from` value, must be a valid date")
	}
	toDate, err := time.Parse(queryDateLayout, toStr)
	if err != nil {
		return nil, fmt.Errorf("invalid `to` value, must be a valid date")
	}
	if fromDate.After(toDate) {
		return nil, fmt.Errorf("`from` must be before or equal to `to`")
	}

	var windows []int
	for _, windowStr := range c.QueryParams()["window"] {
		window, err := strconv.Atoi(windowStr)
		if err != nil || window < 1 {
			return nil, fmt.Errorf("invalid `window` value, must be a positive integer")
		}
		windows = append(windows, window)
	}

	return &service.MetricsRequest{
		Symbols:  symbols,
		FromDate: fromDate,
		ToDate:   toDate,
		Windows:  windows,
	}, nil
}
