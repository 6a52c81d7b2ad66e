package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/hybridship/powersim/core/metrics"
)

// WriteJSON writes the timestep records to w in JSON format.
func WriteJSON(w io.Writer, records []metrics.TimestepRecord) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes the timestep records to w as CSV with a header row.
func WriteCSV(w io.Writer, records []metrics.TimestepRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"run_id", "step", "time", "demand_kw", "gensets_on", "unmet", "load_ratio", "bsfc_g_per_kwh", "fuel_kg_per_s", "storage_loss_kw"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.RunID,
			strconv.Itoa(r.Step),
			r.Time.Format(time.RFC3339),
			strconv.FormatFloat(r.DemandKW, 'f', -1, 64),
			strconv.Itoa(r.GensetsOn),
			strconv.FormatBool(r.Unmet),
			strconv.FormatFloat(r.LoadRatio, 'f', -1, 64),
			strconv.FormatFloat(r.BSFCGramPerKWh, 'f', -1, 64),
			strconv.FormatFloat(r.FuelKgPerS, 'f', -1, 64),
			strconv.FormatFloat(r.StorageLossKW, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
