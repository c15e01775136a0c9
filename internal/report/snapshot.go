package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"reseller_hub/internal/gateway"
)

const SnapshotMIMEType = "text/csv"

// ErrNoData refuses a snapshot of an empty relation.
var ErrNoData = errors.New("no data to export")

// SnapshotFileName names the CSV backup of rel taken at now, e.g.
// Orders_Backup_2024-05-06.csv.
func SnapshotFileName(rel gateway.Relation, now time.Time) string {
	name := string(rel)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s_Backup_%s.csv", name, now.Format(dateLayout))
}

// WriteSnapshot writes rows as CSV: a header of raw column names followed by
// one line per row, every field quoted. An empty set writes nothing and
// returns ErrNoData.
func WriteSnapshot(w io.Writer, rows *gateway.RowSet) error {
	if rows.Len() == 0 {
		return ErrNoData
	}

	bw := bufio.NewWriter(w)
	writeLine(bw, rows.Columns)
	fields := make([]string, len(rows.Columns))
	for _, row := range rows.Rows {
		for i := range fields {
			fields[i] = ""
			if i < len(row) {
				fields[i] = formatField(row[i])
			}
		}
		writeLine(bw, fields)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func writeLine(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

func formatField(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		if t.Equal(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())) {
			return t.Format(dateLayout)
		}
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
