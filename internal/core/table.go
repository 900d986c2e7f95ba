package core

// table.go defines the in-memory Table the dashboard works on.
//
// Cells are stored as pgtype nullable values: Valid=false is the
// missing-value marker for every kind. Category columns keep integer codes
// into a sorted label slice, with -1 marking a missing value.

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Kind is the logical type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindDatetime
	KindCategory
)

// String returns the display name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDatetime:
		return "datetime"
	case KindCategory:
		return "category"
	default:
		return "text"
	}
}

// missingCode marks a missing value in a category column.
const missingCode = -1

// Column is a named, single-kind sequence of values.
// Only the slice matching Kind is populated.
type Column struct {
	Name string
	Kind Kind

	// Integer reports that every present numeric value is integral.
	Integer bool

	Numbers []pgtype.Float8
	Times   []pgtype.Timestamp
	Texts   []pgtype.Text
	Codes   []int
	Labels  []string
}

// NumericColumn builds a numeric column. NaN values are stored as missing.
func NumericColumn(name string, values ...float64) *Column {
	nums := make([]pgtype.Float8, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			nums[i] = pgtype.Float8{Float64: v, Valid: true}
		}
	}
	return newNumericColumn(name, nums)
}

func newNumericColumn(name string, nums []pgtype.Float8) *Column {
	col := &Column{Name: name, Kind: KindNumeric, Numbers: nums, Integer: true}
	for _, n := range nums {
		if n.Valid && (n.Float64 != math.Trunc(n.Float64) || math.IsInf(n.Float64, 0)) {
			col.Integer = false
			break
		}
	}
	return col
}

// TextColumn builds a text column. Empty strings are stored as missing.
func TextColumn(name string, values ...string) *Column {
	texts := make([]pgtype.Text, len(values))
	for i, v := range values {
		if v != "" {
			texts[i] = pgtype.Text{String: v, Valid: true}
		}
	}
	return &Column{Name: name, Kind: KindText, Texts: texts}
}

// DatetimeColumn builds a datetime column. Zero times are stored as missing.
func DatetimeColumn(name string, values ...time.Time) *Column {
	times := make([]pgtype.Timestamp, len(values))
	for i, v := range values {
		if !v.IsZero() {
			times[i] = pgtype.Timestamp{Time: v, Valid: true}
		}
	}
	return &Column{Name: name, Kind: KindDatetime, Times: times}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Numbers)
	case KindDatetime:
		return len(c.Times)
	case KindCategory:
		return len(c.Codes)
	default:
		return len(c.Texts)
	}
}

// IsMissing reports whether row i holds the missing-value marker.
func (c *Column) IsMissing(i int) bool {
	switch c.Kind {
	case KindNumeric:
		return !c.Numbers[i].Valid
	case KindDatetime:
		return !c.Times[i].Valid
	case KindCategory:
		return c.Codes[i] == missingCode
	default:
		return !c.Texts[i].Valid
	}
}

// Count returns the number of non-missing values.
func (c *Column) Count() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Format returns the textual representation of row i, or "" when missing.
func (c *Column) Format(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	switch c.Kind {
	case KindNumeric:
		return formatNumber(c.Numbers[i].Float64)
	case KindDatetime:
		return formatTime(c.Times[i].Time)
	case KindCategory:
		return c.Labels[c.Codes[i]]
	default:
		return c.Texts[i].String
	}
}

// Less orders two present rows by the column's natural order: numeric value,
// time, category label order, or text.
func (c *Column) Less(i, j int) bool {
	switch c.Kind {
	case KindNumeric:
		return c.Numbers[i].Float64 < c.Numbers[j].Float64
	case KindDatetime:
		return c.Times[i].Time.Before(c.Times[j].Time)
	case KindCategory:
		return c.Codes[i] < c.Codes[j]
	default:
		return c.Texts[i].String < c.Texts[j].String
	}
}

// Floats returns the present numeric values in row order.
// It returns nil for non-numeric columns.
func (c *Column) Floats() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Numbers))
	for _, n := range c.Numbers {
		if n.Valid {
			out = append(out, n.Float64)
		}
	}
	return out
}

// TypeName describes the column type as shown in the column information table.
func (c *Column) TypeName() string {
	if c.Kind == KindNumeric {
		if c.Integer {
			return "numeric (integer)"
		}
		return "numeric (float)"
	}
	return c.Kind.String()
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Integer: c.Integer}
	if c.Numbers != nil {
		out.Numbers = append([]pgtype.Float8(nil), c.Numbers...)
	}
	if c.Times != nil {
		out.Times = append([]pgtype.Timestamp(nil), c.Times...)
	}
	if c.Texts != nil {
		out.Texts = append([]pgtype.Text(nil), c.Texts...)
	}
	if c.Codes != nil {
		out.Codes = append([]int(nil), c.Codes...)
	}
	if c.Labels != nil {
		out.Labels = append([]string(nil), c.Labels...)
	}
	return out
}

// Table is an ordered collection of named columns sharing one row count.
type Table struct {
	Columns []*Column
}

// NewTable builds a table and checks that all columns have the same length.
func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{Columns: cols}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the shared row count invariant.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return nil
	}
	want := t.Columns[0].Len()
	for _, c := range t.Columns[1:] {
		if c.Len() != want {
			return fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), want)
		}
	}
	return nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the numeric columns in order.
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// NumericNames returns the names of the numeric columns in order.
func (t *Table) NumericNames() []string {
	cols := t.NumericColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

// Head returns the first n rows formatted as text.
func (t *Table) Head(n int) [][]string {
	if n > t.Rows() {
		n = t.Rows()
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Format(i)
		}
		rows[i] = row
	}
	return rows
}

// ColumnInfo summarizes one column for the column information table.
type ColumnInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	NonNull  int    `json:"non_null"`
	Rows     int    `json:"rows"`
	Distinct int    `json:"distinct"`
}

// Info returns per-column structure information.
func (t *Table) Info() []ColumnInfo {
	infos := make([]ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		infos[i] = ColumnInfo{
			Index:    i,
			Name:     c.Name,
			Type:     c.TypeName(),
			NonNull:  c.Count(),
			Rows:     c.Len(),
			Distinct: len(groupRows(c)),
		}
	}
	return infos
}

// formatNumber renders a float without a trailing ".0" for integral values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatTime renders a timestamp, dropping the clock when it is midnight.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
