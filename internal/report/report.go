// Package report writes analysis results to disk.
package report

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-greeks/internal/analyze"
)

const (
	JSONFile = "analysis.json"
	CSVFile  = "analysis.csv"

	places = 6
)

// Analysis is the JSON document written by WriteJSON.
type Analysis struct {
	Summary analyze.Summary `json:"summary"`
	Rows    []analyze.Row   `json:"rows"`
}

func WriteJSON(rows []analyze.Row, outdir string) error {
	b, err := json.MarshalIndent(Analysis{Summary: analyze.Summarize(rows), Rows: rows}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, JSONFile), b, 0644)
}

func WriteCSV(rows []analyze.Row, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, CSVFile))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	headers := []string{"symbol", "type", "underlying", "strike", "time", "rate", "price", "sigma", "status", "iterations", "intrinsic", "below_intrinsic", "model_price", "delta", "gamma", "vega", "theta", "rho"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.Symbol, string(r.Type),
			fixed(r.Underlying), fixed(r.Strike), fixed(r.Time), fixed(r.Rate), fixed(r.Price),
			fixed(r.Sigma), string(r.Status), strconv.Itoa(r.Iterations), fixed(r.Intrinsic), strconv.FormatBool(r.BelowIntrinsic),
			fixed(r.Greeks.Price), fixed(r.Greeks.Delta), fixed(r.Greeks.Gamma), fixed(r.Greeks.Vega), fixed(r.Greeks.Theta), fixed(r.Greeks.Rho),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// fixed renders v with six decimals; decimal cannot hold NaN or Inf.
func fixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
