package server

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/column"
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/types"
)

// OutputFormat specifies the result format.
type OutputFormat string

const (
	FormatTabSeparated OutputFormat = "TabSeparated"
	FormatJSON         OutputFormat = "JSON"
	FormatCSV          OutputFormat = "CSV"
	FormatNative       OutputFormat = "Native"
)

// ParseFormat parses a format string (case-insensitive). Unknown names
// fall back to TabSeparated.
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "csv", "csvwithnames":
		return FormatCSV
	case "native":
		return FormatNative
	default:
		return FormatTabSeparated
	}
}

// ContentType returns the MIME type of the format.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatNative:
		return "application/octet-stream"
	default:
		return "text/tab-separated-values"
	}
}

// FormatResult writes a query result in the specified format.
func FormatResult(w io.Writer, result *engine.ExecuteResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return formatJSON(w, result)
	case FormatCSV:
		return formatCSV(w, result)
	case FormatNative:
		return formatNative(w, result)
	default:
		return formatTabSeparated(w, result)
	}
}

func formatTabSeparated(w io.Writer, result *engine.ExecuteResult) error {
	var sb strings.Builder
	sb.WriteString(strings.Join(result.ColumnNames, "\t"))
	sb.WriteByte('\n')
	for _, block := range result.Blocks {
		for row, n := 0, block.NumRows(); row < n; row++ {
			for c, col := range block.Columns {
				if c > 0 {
					sb.WriteByte('\t')
				}
				sb.WriteString(escapeTSV(types.ValueToString(col.DataType(), col.Value(row))))
			}
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

var tsvEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`)

func escapeTSV(s string) string {
	return tsvEscaper.Replace(s)
}

func formatCSV(w io.Writer, result *engine.ExecuteResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(result.ColumnNames); err != nil {
		return err
	}
	for _, block := range result.Blocks {
		for row, n := 0, block.NumRows(); row < n; row++ {
			rec := make([]string, block.NumColumns())
			for c, col := range block.Columns {
				rec[c] = types.ValueToString(col.DataType(), col.Value(row))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type columnMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type resultJSON struct {
	Meta    []columnMeta     `json:"meta"`
	Data    []map[string]any `json:"data"`
	Rows    int              `json:"rows"`
	QueryID string           `json:"query_id,omitempty"`
}

func formatJSON(w io.Writer, result *engine.ExecuteResult) error {
	out := resultJSON{
		Meta:    make([]columnMeta, len(result.ColumnNames)),
		Data:    make([]map[string]any, 0, result.NumRows()),
		QueryID: result.QueryID,
	}
	for i, name := range result.ColumnNames {
		out.Meta[i] = columnMeta{Name: name}
		if i < len(result.ColumnTypes) {
			out.Meta[i].Type = result.ColumnTypes[i].Name()
		}
	}

	for _, block := range result.Blocks {
		for row, n := 0, block.NumRows(); row < n; row++ {
			rowMap := make(map[string]any, block.NumColumns())
			for c, col := range block.Columns {
				rowMap[block.ColumnNames[c]] = col.Value(row)
			}
			out.Data = append(out.Data, rowMap)
		}
	}
	out.Rows = len(out.Data)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// formatNative writes the whole result as one block. An empty result still
// carries its column names and types.
func formatNative(w io.Writer, result *engine.ExecuteResult) error {
	cols := make([]column.Column, len(result.ColumnTypes))
	for i, dt := range result.ColumnTypes {
		cols[i] = column.NewColumnWithCapacity(dt, result.NumRows())
	}
	names := make([]string, len(result.ColumnNames))
	copy(names, result.ColumnNames)
	merged := column.NewBlock(names, cols)
	for i, block := range result.Blocks {
		if err := merged.AppendBlock(block); err != nil {
			return errors.Wrapf(err, "native block %d", i)
		}
	}
	return errors.Wrap(column.EncodeBlock(w, merged), "native")
}
