package api

import (
	"strings"

	"github.com/statpull/statpull/pkg/errors"
)

// Filter is one key/value pair narrowing an API query, rendered as a URL
// query parameter.
type Filter struct {
	Key   string
	Value string
}

// Query identifies what to fetch: a resource category (the API path
// segment) plus an ordered list of filters. Filter order is preserved in
// the rendered URL so identical queries produce identical URLs.
type Query struct {
	Category string
	Filters  []Filter
}

// NewQuery builds a Query from parallel key and value slices, the shape the
// CLI collects them in. The slices must be the same length.
func NewQuery(category string, keys, values []string) (Query, error) {
	if category == "" {
		return Query{}, errors.New(errors.TypeValidation, "category is required")
	}
	if len(keys) != len(values) {
		return Query{}, errors.New(errors.TypeValidation, "filter keys and values must have the same length").
			WithDetail("keys", len(keys)).
			WithDetail("values", len(values))
	}

	filters := make([]Filter, len(keys))
	for i := range keys {
		filters[i] = Filter{Key: keys[i], Value: values[i]}
	}

	return Query{Category: category, Filters: filters}, nil
}

// URL renders the query against a base URL. The first filter is joined
// with "?", each subsequent filter with "&", in caller order. No query
// string is appended when there are no filters.
func (q Query) URL(baseURL string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteByte('/')
	b.WriteString(q.Category)

	for i, f := range q.Filters {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}

	return b.String()
}
