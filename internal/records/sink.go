package records

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crunchy-cli/internal/pipeline"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Project renders the given columns of rec as strings. Columns the record
// does not carry are empty.
func Project(columns []pipeline.Field, rec pipeline.Record) map[string]string {
	out := make(map[string]string, len(columns))
	for _, c := range columns {
		out[string(c)] = rec.String(c)
	}
	return out
}

// WriteCSV writes a header of columns followed by one line per record.
func WriteCSV(w io.Writer, columns []pipeline.Field, recs []pipeline.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = string(c)
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "records: write csv header")
	}

	line := make([]string, len(columns))
	for _, rec := range recs {
		for i, c := range columns {
			line[i] = rec.String(c)
		}
		if err := cw.Write(line); err != nil {
			return eris.Wrap(err, "records: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "records: flush csv")
}

// WriteJSON writes the records as a JSON array of column/value objects.
func WriteJSON(w io.Writer, columns []pipeline.Field, recs []pipeline.Record) error {
	out := make([]map[string]string, len(recs))
	for i, rec := range recs {
		out[i] = Project(columns, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "records: encode json")
	}
	return nil
}

// WriteFile creates path and writes the records in the given format.
func WriteFile(path, format string, columns []pipeline.Field, recs []pipeline.Record) error {
	if format != FormatCSV && format != FormatJSON && format != "" {
		return eris.Errorf("records: unsupported output format %q", format)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "records: create output dir")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "records: create output file")
	}

	switch format {
	case FormatJSON:
		err = WriteJSON(f, columns, recs)
	default:
		err = WriteCSV(f, columns, recs)
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = eris.Wrap(cerr, "records: close output file")
	}
	return err
}

// DefaultOutputPath is PROCESSED_<timestamp>_<input base name> in dir, with
// the extension switched to match format.
func DefaultOutputPath(dir, input, format string, now time.Time) string {
	base := filepath.Base(input)
	if format == "" {
		format = FormatCSV
	}
	base = strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
	return filepath.Join(dir, "PROCESSED_"+now.UTC().Format(time.RFC3339)+"_"+base)
}
