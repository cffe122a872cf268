package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvDateLayout matches the displayed date format
const csvDateLayout = "02-Jan-2006"

// WriteCSV serializes the full ungrouped row set as UTF-8 CSV. The
// header row matches the displayed column names, VWAP is omitted, and
// every undefined value is serialized as the literal string "None".
func WriteCSV(w io.Writer, rows []DerivedRow, windows []int) error {
	windows = dedupeWindows(windows)

	header := []string{
		"Date", "Symbol", "LTP", "BUY/SELL VOLUME%",
		"Trading Volume %", "Trading Value %", "Number of Trades %", "Delivery%",
	}
	for _, window := range windows {
		header = append(header,
			fmt.Sprintf("AVG_%dD_VOL%%", window),
			fmt.Sprintf("AVG_%dD_TRADES%%", window),
		)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format(csvDateLayout),
			row.Symbol,
			strconv.FormatFloat(row.LTP, 'f', -1, 64),
			FormatPair(row.BuySell),
			csvNumber(row.VolumeChangePercent),
			csvNumber(row.ValueChangePercent),
			csvNumber(row.TradesChangePercent),
			csvNumber(row.DeliveryPercent),
		}
		for _, window := range windows {
			record = append(record,
				csvNumber(row.VolumeAverages[window]),
				csvNumber(row.TradesAverages[window]),
			)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvNumber(v *float64) string {
	if !defined(v) {
		return "None"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
