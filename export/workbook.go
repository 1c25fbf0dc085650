package export

import (
	"strings"

	"github.com/hupe1980/cgsep"
	"github.com/hupe1980/cgsep/separability"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Workbook renders the concept, attribute and k-best tables of r as one xlsx
// workbook with a sheet per table.
func Workbook(r *cgsep.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheets := 0
	if r.Concept != nil {
		if err := tableSheet(f, "concept", r.Concept); err != nil {
			return nil, err
		}
		sheets++
	}
	if r.Attribute != nil {
		if err := tableSheet(f, "attribute", r.Attribute); err != nil {
			return nil, err
		}
		sheets++
	}
	for i := range r.KBest {
		if err := kBestSheet(f, &r.KBest[i]); err != nil {
			return nil, err
		}
		sheets++
	}
	if sheets > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tableSheet(f *excelize.File, name string, t *separability.Table) error {
	header := []any{"name", "attributes", "score"}
	for _, l := range t.PairLabels {
		header = append(header, l)
	}
	rows := [][]any{header}
	for _, r := range t.Rows {
		row := []any{r.Name, strings.Join(r.Attributes, ","), r.Score}
		for _, s := range r.PairScores {
			row = append(row, s)
		}
		rows = append(rows, row)
	}
	return writeSheet(f, name, rows)
}

func kBestSheet(f *excelize.File, t *separability.KBestTable) error {
	rows := [][]any{{"k", "rank", "subset", "score"}}
	for _, r := range t.Rows {
		rows = append(rows, []any{r.K, r.Rank, strings.Join(r.Subset, ","), r.Score})
	}
	return writeSheet(f, "k_best_"+t.Pair.String(), rows)
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
