package print

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/bgunnarsson/dbhub/internal/db"
)

// RenderTable writes rows as a bordered text table. Column order
// follows the first row; NULL cells print as NULL.
func RenderTable(w io.Writer, rows []db.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	cols := rows[0].Columns()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range rows {
		cells := make(table.Row, len(cols))
		for i, c := range cols {
			v, _ := r.Get(c)
			cells[i] = formatCell(v)
		}
		t.AppendRow(cells)
	}

	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// RenderJSON writes rows as a JSON array of objects, columns in
// backend order.
func RenderJSON(w io.Writer, rows []db.Row) error {
	if rows == nil {
		rows = []db.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// RenderNames writes one name per line, for table listings.
func RenderNames(w io.Writer, names []string) {
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

func formatCell(v db.Value) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
