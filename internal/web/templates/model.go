// Package templates renders the dashboard's HTML as templ components.
package templates

// Message is a flash line shown as an alert.
type Message struct {
	Level string // success, warning, error or info
	Text  string
}

// Option is one choice of a select box.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Select is a labelled select box.
type Select struct {
	Name    string
	Label   string
	Options []Option
}

// ColumnInfoRow is one line of the column information table.
type ColumnInfoRow struct {
	Index    int
	Name     string
	Type     string
	NonNull  int
	Rows     int
	Distinct int
}

// TypeRow describes a column and its conversion choice.
type TypeRow struct {
	Column      string
	CurrentType string
	Select      Select
}

// Grid is a table with a header row.
type Grid struct {
	Headers []string
	Rows    [][]string
}

// SessionPage is everything shown for an uploaded file.
type SessionPage struct {
	SessionID string
	Filename  string

	LoadMessages []Message
	// LoadError is set when the file could not be read; nothing below
	// LoadMessages is shown then.
	LoadError *Message

	Preview    Grid
	ColumnInfo []ColumnInfoRow

	TypesURL  string
	TypeRows  []TypeRow
	Coercions []Message

	Stats       *Grid
	StatsInfo   string
	DescribeURL string

	ChartFormURL string
	ChartKind    Select
	ChartFields  []Select
	ChartTitle   string
	ChartURL     string
	ChartInfo    string
}
