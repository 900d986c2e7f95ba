package web

// view.go turns a core.Analysis into the template's page model.

import (
	"math"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/web/templates"
)

func sessionPath(id string) string {
	return "/s/" + url.PathEscape(id)
}

// chartURL is the SVG endpoint for req.
func chartURL(id string, req core.ChartRequest) string {
	q := url.Values{}
	q.Set("kind", string(req.Kind))
	if req.X != "" {
		q.Set("x", req.X)
	}
	if req.Y != "" {
		q.Set("y", req.Y)
	}
	if req.Hue != "" {
		q.Set("hue", req.Hue)
	}
	return sessionPath(id) + "/chart.svg?" + q.Encode()
}

func buildSessionPage(a *core.Analysis, bindErr error) templates.SessionPage {
	id := a.Session.ID
	p := templates.SessionPage{
		SessionID:    id,
		Filename:     a.Session.Filename,
		TypesURL:     sessionPath(id) + "/types",
		DescribeURL:  sessionPath(id) + "/describe",
		ChartFormURL: sessionPath(id),
	}

	if a.Load != nil {
		for _, att := range a.Load.Attempts {
			p.LoadMessages = append(p.LoadMessages, templates.Message{Level: att.Level(), Text: att.Message()})
		}
	}
	if a.LoadErr != nil {
		p.LoadError = &templates.Message{Level: "error", Text: core.FormatUserError(a.LoadErr)}
		return p
	}

	p.Preview = templates.Grid{Headers: a.Original.Names(), Rows: a.Preview}
	for _, info := range a.Info {
		p.ColumnInfo = append(p.ColumnInfo, templates.ColumnInfoRow(info))
	}

	for _, col := range a.Original.Columns {
		current := a.Session.Directives[col.Name]
		if current == "" {
			current = core.NoChange
		}
		sel := templates.Select{
			Name:  typeFieldName(col.Name),
			Label: "Convert `" + col.Name + "` to:",
		}
		for _, d := range core.TypeDirectives {
			sel.Options = append(sel.Options, templates.Option{
				Value:    string(d),
				Label:    d.Label(),
				Selected: d == current,
			})
		}
		p.TypeRows = append(p.TypeRows, templates.TypeRow{
			Column:      col.Name,
			CurrentType: col.TypeName(),
			Select:      sel,
		})
	}
	for _, c := range a.Coercions {
		level := "success"
		if !c.OK() {
			level = "error"
		}
		p.Coercions = append(p.Coercions, templates.Message{Level: level, Text: c.Message()})
	}

	if a.Stats != nil {
		p.Stats = statsGrid(a.Stats)
	} else if info, ok := core.AsInfo(a.StatsErr); ok {
		p.StatsInfo = info.Message
	}

	p.ChartKind = chartKindSelect(a.Chart.Kind)
	p.ChartFields = chartFieldSelects(a.Table, a.Chart)
	chartErr := a.ChartErr
	if bindErr != nil {
		chartErr = bindErr
	}
	switch {
	case chartErr != nil:
		if info, ok := core.AsInfo(chartErr); ok {
			p.ChartInfo = info.Message
		} else {
			p.ChartInfo = core.FormatUserError(chartErr)
		}
	default:
		p.ChartURL = chartURL(id, a.Chart)
		p.ChartTitle = a.Chart.Kind.Label()
	}
	return p
}

func statsGrid(d *core.Description) *templates.Grid {
	g := &templates.Grid{Headers: []string{""}}
	for _, c := range d.Columns {
		g.Headers = append(g.Headers, c.Column)
	}
	for i, name := range core.StatNames {
		row := []string{name}
		for _, c := range d.Columns {
			v := c.Values()[i]
			if i == 0 {
				row = append(row, strconv.Itoa(c.Count))
				continue
			}
			row = append(row, formatStat(v))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func chartKindSelect(current core.ChartKind) templates.Select {
	s := templates.Select{Name: "kind", Label: "Select Plot Type:"}
	for _, k := range core.ChartKinds {
		s.Options = append(s.Options, templates.Option{
			Value:    string(k),
			Label:    k.Label(),
			Selected: k == current,
		})
	}
	return s
}

func columnSelect(name, label string, columns []string, current string, optional bool) templates.Select {
	s := templates.Select{Name: name, Label: label}
	if optional {
		s.Options = append(s.Options, templates.Option{Value: noneOption, Label: noneOption, Selected: current == ""})
	}
	for _, c := range columns {
		s.Options = append(s.Options, templates.Option{Value: c, Label: c, Selected: c == current})
	}
	return s
}

// chartFieldSelects returns the column pickers for the selected chart kind.
func chartFieldSelects(t *core.Table, req core.ChartRequest) []templates.Select {
	all := t.Names()
	numeric := t.NumericNames()

	switch req.Kind {
	case core.ChartBar:
		return []templates.Select{
			columnSelect("x", "Select X-axis column (Categorical/Numerical):", all, req.X, false),
			columnSelect("y", "Select Y-axis column (Numerical, optional):", all, req.Y, true),
		}
	case core.ChartLine:
		return []templates.Select{
			columnSelect("x", "Select X-axis column (Numerical/Datetime):", all, req.X, false),
			columnSelect("y", "Select Y-axis column (Numerical):", numeric, req.Y, false),
		}
	case core.ChartHistogram:
		return []templates.Select{
			columnSelect("x", "Select column for Histogram (Numerical):", numeric, req.X, false),
		}
	case core.ChartScatter:
		return []templates.Select{
			columnSelect("x", "Select X-axis column (Numerical):", numeric, req.X, false),
			columnSelect("y", "Select Y-axis column (Numerical):", numeric, req.Y, false),
			columnSelect("hue", "Select Hue column (Categorical, optional):", all, req.Hue, true),
		}
	case core.ChartPie:
		return []templates.Select{
			columnSelect("x", "Select column for Pie Chart (Categorical/Numerical):", all, req.X, false),
		}
	default:
		return nil
	}
}
