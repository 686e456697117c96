package dataset

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Frame is an immutable, column-ordered table. Cells hold nil, int64,
// float64, bool or string; each column has a single inferred type.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// NewFrame infers a type per column from raw string cells. Empty cells
// become nil. Short rows are padded with nil.
func NewFrame(header []string, raw [][]string) *Frame {
	f := &Frame{
		columns: append([]string(nil), header...),
		index:   make(map[string]int, len(header)),
		rows:    make([][]any, len(raw)),
	}
	for i, name := range f.columns {
		if _, ok := f.index[name]; !ok {
			f.index[name] = i
		}
	}
	for i := range f.rows {
		f.rows[i] = make([]any, len(header))
	}
	for col := range header {
		kind := inferKind(raw, col)
		for i, rec := range raw {
			if col >= len(rec) {
				continue
			}
			f.rows[i][col] = convertCell(rec[col], kind)
		}
	}
	return f
}

func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

func (f *Frame) Len() int {
	return len(f.rows)
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the cells of a column in row order.
func (f *Frame) Column(name string) ([]any, bool) {
	idx, ok := f.index[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[idx]
	}
	return out, true
}

// Unique returns the distinct values of a column in first-seen order.
func (f *Frame) Unique(name string) ([]any, bool) {
	values, ok := f.Column(name)
	if !ok {
		return nil, false
	}
	seen := make(map[any]struct{}, len(values))
	out := make([]any, 0)
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, true
}

// Head returns up to n leading rows as records.
func (f *Frame) Head(n int) []Record {
	if n > len(f.rows) {
		n = len(f.rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		out[i] = Record{columns: f.columns, values: f.rows[i]}
	}
	return out
}

// Record is one row; it marshals to a JSON object keeping column order.
type Record struct {
	columns []string
	values  []any
}

func (r Record) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type cellKind int

const (
	kindInt cellKind = iota
	kindFloat
	kindBool
	kindString
)

func inferKind(raw [][]string, col int) cellKind {
	isInt, isFloat, isBool := true, true, true
	nonEmpty := 0
	for _, rec := range raw {
		if col >= len(rec) {
			continue
		}
		cell := strings.TrimSpace(rec[col])
		if cell == "" {
			continue
		}
		nonEmpty++
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBoolLiteral(cell); !ok {
				isBool = false
			}
		}
	}
	switch {
	case nonEmpty == 0:
		return kindFloat
	case isInt:
		return kindInt
	case isFloat:
		return kindFloat
	case isBool:
		return kindBool
	}
	return kindString
}

func convertCell(cell string, kind cellKind) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	switch kind {
	case kindInt:
		v, _ := strconv.ParseInt(trimmed, 10, 64)
		return v
	case kindFloat:
		v, _ := strconv.ParseFloat(trimmed, 64)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case kindBool:
		v, _ := parseBoolLiteral(trimmed)
		return v
	}
	return cell
}

// parseBoolLiteral accepts the spellings pandas writes for booleans.
// 0 and 1 stay numeric.
func parseBoolLiteral(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Float reads a numeric cell.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Int reads an integral cell. Floats with a fractional part are rejected.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}
