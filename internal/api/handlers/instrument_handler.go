// Package handlers contains the handlers for the API
package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/marketbots/nsemetricsapi/internal/service"
	"github.com/marketbots/nsemetricsapi/pkg/utils/response"
	"gorm.io/gorm"
)

type InstrumentHandler struct {
	InstrumentService *service.InstrumentService
}

func NewInstrumentHandler(db *gorm.DB) *InstrumentHandler {
	return &InstrumentHandler{
		InstrumentService: service.NewInstrumentService(db),
	}
}

// UpdateInstrumentsResponseData is the response data for the UpdateInstruments endpoint
type UpdateInstrumentsResponseData struct {
	Timestamp string `json:"timestamp"`
	Records   int64  `json:"records"`
}

// UpdateInstruments forces a scrip master refresh
func (h *InstrumentHandler) UpdateInstruments(c echo.Context) error {
	recordCount, err := h.InstrumentService.UpdateInstruments()
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}

	responseData := UpdateInstrumentsResponseData{
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		Records:   recordCount,
	}

	return response.SuccessResponse(c, responseData)
}

// GetEquitySymbols returns the selectable equity symbol universe. On a
// fetch failure the client falls back to manual symbol entry.
func (h *InstrumentHandler) GetEquitySymbols(c echo.Context) error {
	symbols, err := h.InstrumentService.ListEquitySymbols()
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadGateway, "FetchException", err.Error())
	}
	return response.SuccessResponse(c, symbols)
}
