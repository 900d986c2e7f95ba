package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/datadash/internal/core"
)

// noneOption is the select value meaning "no column".
const noneOption = "None"

var validate = validator.New()

// bindChartRequest reads kind, x, y and hue from the query string.
func bindChartRequest(r *http.Request) (core.ChartRequest, error) {
	q := r.URL.Query()
	req := core.ChartRequest{
		Kind: core.ChartKind(strings.ToLower(strings.TrimSpace(q.Get("kind")))),
		X:    columnParam(q, "x"),
		Y:    columnParam(q, "y"),
		Hue:  columnParam(q, "hue"),
	}
	if req.Kind == "" {
		req.Kind = core.ChartBar
	}
	if err := validate.Struct(req); err != nil {
		return req, &core.InfoError{
			Err:     core.ErrChartUnavailable,
			Message: "Invalid chart selection: " + validationMessage(err) + ".",
		}
	}
	return req, nil
}

func columnParam(q url.Values, name string) string {
	v := q.Get(name)
	if v == noneOption {
		return ""
	}
	return v
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			parts = append(parts, fmt.Sprintf("unknown chart type %q", fe.Value()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s is too long", strings.ToLower(fe.Field())))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(parts, "; ")
}

// typeFieldPrefix and typeFieldSuffix wrap column names in the conversion form.
const (
	typeFieldPrefix = "type["
	typeFieldSuffix = "]"
)

func typeFieldName(column string) string {
	return typeFieldPrefix + column + typeFieldSuffix
}

// bindDirectives reads type[<column>]=<directive> fields from a form.
func bindDirectives(form url.Values) (map[string]core.TypeDirective, error) {
	directives := make(map[string]core.TypeDirective)
	for key, values := range form {
		if !strings.HasPrefix(key, typeFieldPrefix) || !strings.HasSuffix(key, typeFieldSuffix) || len(values) == 0 {
			continue
		}
		column := key[len(typeFieldPrefix) : len(key)-len(typeFieldSuffix)]
		if column == "" {
			continue
		}
		d, err := core.ParseTypeDirective(values[0])
		if err != nil {
			return nil, err
		}
		directives[column] = d
	}
	return directives, nil
}
