package metrics

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	rows := []DerivedRow{
		{
			Date:                day(2),
			Symbol:              "TCS",
			LTP:                 3510.5,
			BuySell:             strptr("60/40"),
			VWAP:                ptr(3505.25),
			DeliveryPercent:     ptr(33.33),
			VolumeChangePercent: ptr(50),
			ValueChangePercent:  ptr(52.5),
			TradesChangePercent: ptr(-10),
			VolumeAverages:      map[int]*float64{5: ptr(12.5)},
			TradesAverages:      map[int]*float64{5: nil},
		},
		{
			Date:   day(1),
			Symbol: "TCS",
			LTP:    3500,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, []int{5}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Date", "Symbol", "LTP", "BUY/SELL VOLUME%",
		"Trading Volume %", "Trading Value %", "Number of Trades %", "Delivery%",
		"AVG_5D_VOL%", "AVG_5D_TRADES%",
	}, records[0])

	assert.Equal(t, []string{
		"02-Jan-2024", "TCS", "3510.5", "60/40", "50", "52.5", "-10", "33.33", "12.5", "None",
	}, records[1])

	// Undefined values serialize as the literal "None"
	assert.Equal(t, []string{
		"01-Jan-2024", "TCS", "3500", "None", "None", "None", "None", "None", "None", "None",
	}, records[2])
}

func TestWriteCSVOmitsVWAP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []DerivedRow{{Date: day(1), Symbol: "TCS", LTP: 100, VWAP: ptr(99)}}, nil))

	out := buf.String()
	assert.NotContains(t, out, "VWAP")
	assert.NotContains(t, out, "99")
}

func TestWriteCSVNoWindows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, records[0], 8)
}
