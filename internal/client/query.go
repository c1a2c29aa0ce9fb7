package client

import (
	json "github.com/goccy/go-json"
	"net/url"
	"strconv"
)

// Filter is a single `[field, operator, value]` condition.
type Filter struct {
	Field    string
	Operator string
	Value    any
}

func Eq(field string, value any) Filter { return Filter{Field: field, Operator: "=", Value: value} }

func Between(field string, from, to any) Filter {
	return Filter{Field: field, Operator: "between", Value: []any{from, to}}
}

func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{f.Field, f.Operator, f.Value})
}

type ListOptions struct {
	Fields  []string
	Filters []Filter
	OrderBy string
	Limit   int
}

func (o ListOptions) Values() (url.Values, error) {
	params := url.Values{}
	if len(o.Fields) > 0 {
		fields, err := json.Marshal(o.Fields)
		if err != nil {
			return nil, err
		}
		params.Set("fields", string(fields))
	}
	if len(o.Filters) > 0 {
		filters, err := json.Marshal(o.Filters)
		if err != nil {
			return nil, err
		}
		params.Set("filters", string(filters))
	}
	if o.OrderBy != "" {
		params.Set("order_by", o.OrderBy)
	}
	if o.Limit > 0 {
		params.Set("limit_page_length", strconv.Itoa(o.Limit))
	}
	return params, nil
}

func ResourcePath(doctype string) string {
	return "/api/resource/" + url.PathEscape(doctype)
}

func DocumentPath(doctype, name string) string {
	return ResourcePath(doctype) + "/" + url.PathEscape(name)
}

func MethodPath(method string) string {
	return "/api/method/" + url.PathEscape(method)
}
