package core

// coerce.go converts columns to a user-selected type.
//
// Conversions are lenient: a value that cannot be converted becomes the
// missing-value marker instead of failing the column. A column only fails
// when the request itself is invalid or the conversion panics, and the
// failure never affects other columns.

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TypeDirective is the requested target type for one column.
type TypeDirective string

const (
	NoChange   TypeDirective = "no-change"
	ToNumeric  TypeDirective = "numeric"
	ToDatetime TypeDirective = "datetime"
	ToCategory TypeDirective = "category"
	ToString   TypeDirective = "string"
)

const noChangeOption = "No Change"

// TypeDirectives lists the choices offered for every column, in display order.
var TypeDirectives = []TypeDirective{NoChange, ToNumeric, ToDatetime, ToCategory, ToString}

// Label is the text shown for the directive in the page's select boxes.
func (d TypeDirective) Label() string {
	if d == NoChange {
		return noChangeOption
	}
	return string(d)
}

// ParseTypeDirective accepts a directive value or its label.
// The empty string means NoChange.
func ParseTypeDirective(s string) (TypeDirective, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, noChangeOption) {
		return NoChange, nil
	}
	for _, d := range TypeDirectives {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// CoercionResult reports the outcome of one directive.
type CoercionResult struct {
	Column string
	Target TypeDirective
	Err    error
}

// OK reports whether the conversion succeeded.
func (r CoercionResult) OK() bool {
	return r.Err == nil
}

// Message is the line shown to the user for this conversion.
func (r CoercionResult) Message() string {
	if r.Err == nil {
		return fmt.Sprintf("Successfully converted `%s` to `%s`.", r.Column, r.Target.Label())
	}
	return fmt.Sprintf("Could not convert `%s` to `%s`: %v", r.Column, r.Target.Label(), r.Err)
}

// ApplyDirectives returns a copy of t with every directive applied, plus one
// result per directive other than NoChange. Results follow the table's column
// order; directives naming absent columns come last, sorted by name.
func ApplyDirectives(t *Table, directives map[string]TypeDirective) (*Table, []CoercionResult) {
	out := t.Clone()
	var results []CoercionResult

	for i, col := range out.Columns {
		d, ok := directives[col.Name]
		if !ok || d == NoChange {
			continue
		}
		converted, err := Coerce(col, d)
		if err == nil {
			out.Columns[i] = converted
		}
		results = append(results, CoercionResult{Column: col.Name, Target: d, Err: err})
	}

	var absent []string
	for name, d := range directives {
		if d == NoChange {
			continue
		}
		if _, ok := t.Column(name); !ok {
			absent = append(absent, name)
		}
	}
	sort.Strings(absent)
	for _, name := range absent {
		results = append(results, CoercionResult{
			Column: name,
			Target: directives[name],
			Err:    fmt.Errorf("%w: %q", ErrColumnNotFound, name),
		})
	}

	return out, results
}

// Coerce converts col to target and returns a new column. The input is
// never modified.
func Coerce(col *Column, target TypeDirective) (out *Column, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrCoercion, r)
		}
	}()

	switch target {
	case NoChange:
		return col.Clone(), nil
	case ToNumeric:
		return toNumeric(col), nil
	case ToDatetime:
		return toDatetime(col), nil
	case ToCategory:
		return toCategory(col), nil
	case ToString:
		return toString(col), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(target))
	}
}

func toNumeric(col *Column) *Column {
	if col.Kind == KindNumeric {
		return col.Clone()
	}
	nums := make([]pgtype.Float8, col.Len())
	for i := range nums {
		if col.IsMissing(i) {
			continue
		}
		switch col.Kind {
		case KindDatetime:
			nums[i] = pgtype.Float8{Float64: float64(col.Times[i].Time.UnixNano()), Valid: true}
		default:
			nums[i] = ToFloat8(col.Format(i))
		}
	}
	return newNumericColumn(col.Name, nums)
}

func toDatetime(col *Column) *Column {
	if col.Kind == KindDatetime {
		return col.Clone()
	}
	times := make([]pgtype.Timestamp, col.Len())
	for i := range times {
		if col.IsMissing(i) {
			continue
		}
		switch col.Kind {
		case KindNumeric:
			v := col.Numbers[i].Float64
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= math.MaxInt64 {
				continue
			}
			times[i] = pgtype.Timestamp{Time: time.Unix(0, int64(v)).UTC(), Valid: true}
		default:
			times[i] = ToTimestamp(col.Format(i))
		}
	}
	return &Column{Name: col.Name, Kind: KindDatetime, Times: times}
}

// toCategory groups present values into labels sorted by the column's
// natural order. It cannot fail.
func toCategory(col *Column) *Column {
	if col.Kind == KindCategory {
		return col.Clone()
	}

	first := make(map[string]int)
	var labels []string
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		l := col.Format(i)
		if _, ok := first[l]; !ok {
			first[l] = i
			labels = append(labels, l)
		}
	}
	sort.SliceStable(labels, func(a, b int) bool {
		return col.Less(first[labels[a]], first[labels[b]])
	})

	code := make(map[string]int, len(labels))
	for i, l := range labels {
		code[l] = i
	}
	codes := make([]int, col.Len())
	for i := range codes {
		if col.IsMissing(i) {
			codes[i] = missingCode
			continue
		}
		codes[i] = code[col.Format(i)]
	}
	return &Column{Name: col.Name, Kind: KindCategory, Codes: codes, Labels: labels}
}

// toString renders each present value as text. Missing values stay missing.
func toString(col *Column) *Column {
	if col.Kind == KindText {
		return col.Clone()
	}
	texts := make([]pgtype.Text, col.Len())
	for i := range texts {
		if !col.IsMissing(i) {
			texts[i] = pgtype.Text{String: col.Format(i), Valid: true}
		}
	}
	return &Column{Name: col.Name, Kind: KindText, Texts: texts}
}
