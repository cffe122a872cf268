package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/marketbots/nsemetricsapi/internal/config"
	"github.com/marketbots/nsemetricsapi/internal/repository"
	"github.com/marketbots/nsemetricsapi/internal/service"
	"github.com/marketbots/nsemetricsapi/pkg/utils/response"
	"gorm.io/gorm"
)

type IngestHandler struct {
	IngestService *service.IngestService
	SplitRepo     *repository.VolumeSplitRepository
}

func NewIngestHandler(db *gorm.DB, cfg *config.Config) *IngestHandler {
	return &IngestHandler{
		IngestService: service.NewIngestService(db, cfg),
		SplitRepo:     repository.NewVolumeSplitRepository(db),
	}
}

// RunIngestion runs one ingestion pass on demand
func (h *IngestHandler) RunIngestion(c echo.Context) error {
	result, err := h.IngestService.RunIngestion()
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, result)
}

// GetSplits returns the stored buy/sell split rows for a symbol and range
func (h *IngestHandler) GetSplits(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`symbol` is required")
	}

	fromDate, err := time.Parse(queryDateLayout, c.QueryParam("from"))
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "invalid `from` value, must be a valid date")
	}
	toDate, err := time.Parse(queryDateLayout, c.QueryParam("to"))
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "invalid `to` value, must be a valid date")
	}

	rows, err := h.SplitRepo.QuerySplits(symbol, fromDate, toDate)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	if len(rows) == 0 {
		return response.ErrorResponse(c, http.StatusNotFound, "DataNotFound",
			fmt.Sprintf("no splits found for `%s`", symbol))
	}
	return response.SuccessResponse(c, rows)
}
