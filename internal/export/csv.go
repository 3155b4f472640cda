package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"PriceCycle/internal/model"
)

// WriteLevelsCSV writes one row per cycle level: Level,Resistance,Support.
func WriteLevelsCSV(w io.Writer, ls model.LevelSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Level", "Resistance", "Support"}); err != nil {
		return err
	}
	for i := range ls.Resistances {
		row := []string{strconv.Itoa(i + 1), Price(ls.Resistances[i]), Price(ls.Supports[i])}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScanCSV writes one row per scanned symbol. Failed symbols keep their
// row with the error text so the file lines up with the input universe.
func WriteScanCSV(w io.Writer, results []model.ScanResult) error {
	n := 0
	for _, r := range results {
		if r.Report != nil && r.Report.Levels.Len() > n {
			n = r.Report.Levels.Len()
		}
	}

	header := []string{"Symbol", "Reference", "BarDate", "Settled", "ATR"}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("R%d", i))
	}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("S%d", i))
	}
	header = append(header, "Error")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := make([]string, len(header))
		row[0] = r.Symbol
		if r.Err != nil {
			row[len(row)-1] = r.Err.Error()
		} else if rep := r.Report; rep != nil {
			row[1] = Price(rep.Reference)
			row[2] = Date(rep.BarUsed.Time)
			row[3] = strconv.FormatBool(rep.Settled)
			row[4] = ATR(rep.ATR)
			for i := range rep.Levels.Resistances {
				row[5+i] = Price(rep.Levels.Resistances[i])
				row[5+n+i] = Price(rep.Levels.Supports[i])
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
