package records

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// Batch is the validated content of one input file.
type Batch struct {
	Records []pipeline.Record
	Dropped int
}

// Total is the number of records that passed validation.
func (b *Batch) Total() int {
	return len(b.Records)
}

// Load reads path as CSV or XLSX depending on its extension and validates
// every row against schema. Rows that fail validation are logged and
// dropped.
func Load(path string, schema Schema) (*Batch, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, schema)
	case ".csv", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "records: open csv")
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(f, schema)
	default:
		return nil, eris.Errorf("records: unsupported input format %q", filepath.Ext(path))
	}
}

// ReadCSV reads a CSV with a header row.
func ReadCSV(r io.Reader, schema Schema) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "records: read csv")
	}
	return fromRows(rows, schema)
}

// ReadXLSX reads the first sheet of an XLSX workbook. The first row is the
// header.
func ReadXLSX(path string, schema Schema) (*Batch, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "records: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("records: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return fromRows(rows, schema)
}

func fromRows(rows [][]string, schema Schema) (*Batch, error) {
	if len(rows) == 0 {
		return nil, eris.New("records: input has no header row")
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	batch := &Batch{}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		raw := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				raw[strings.TrimSpace(col)] = row[j]
			}
		}

		rec, err := schema.Coerce(raw)
		if err != nil {
			batch.Dropped++
			zap.L().Warn("records: dropping invalid row",
				zap.String("schema", schema.Name),
				zap.Int("row", i+2),
				zap.Error(err),
			)
			continue
		}
		batch.Records = append(batch.Records, rec)
	}

	zap.L().Info("records: loaded input",
		zap.String("schema", schema.Name),
		zap.Int("valid", len(batch.Records)),
		zap.Int("dropped", batch.Dropped),
	)
	return batch, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
