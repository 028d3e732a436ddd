package table

import (
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/statpull/statpull/pkg/errors"
)

// FromJSON normalizes a JSON payload into a Table. A top-level array yields
// one row per element; a single top-level object yields a one-row table.
// Nested objects flatten into dotted-key columns; nested arrays are kept as
// JSON-encoded scalar strings. All column names are uppercased.
//
// Key order from the payload is preserved, so column order is stable across
// runs for identical input.
func FromJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeValidation, "response body is not valid JSON")
	}

	t := New()

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, errors.New(errors.TypeValidation, "response body must be a JSON array or object")
	}

	switch delim {
	case '[':
		for dec.More() {
			element, err := decodeValue(dec)
			if err != nil {
				return nil, errors.Wrap(err, errors.TypeValidation, "malformed JSON array element")
			}
			obj, ok := element.(*orderedObject)
			if !ok {
				return nil, errors.New(errors.TypeValidation, "top-level array element is not a JSON object")
			}
			t.Append(flattenObject(t, obj, ""))
		}
		// consume closing ]
		if _, err := dec.Token(); err != nil {
			return nil, errors.Wrap(err, errors.TypeValidation, "unterminated JSON array")
		}
	case '{':
		obj, err := decodeObject(dec)
		if err != nil {
			return nil, errors.Wrap(err, errors.TypeValidation, "malformed JSON object")
		}
		t.Append(flattenObject(t, obj, ""))
	default:
		return nil, errors.New(errors.TypeValidation, "response body must be a JSON array or object")
	}

	return t, nil
}

// orderedObject is a JSON object with its key order retained. Go maps do
// not preserve insertion order, and column order must be reproducible.
type orderedObject struct {
	keys   []string
	values map[string]interface{}
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
	}

	// string, json.Number, bool, or nil
	return tok, nil
}

// decodeObject reads an object body after its opening brace has been
// consumed, including the closing brace.
func decodeObject(dec *json.Decoder) (*orderedObject, error) {
	obj := &orderedObject{values: make(map[string]interface{})}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New(errors.TypeValidation, "object key is not a string")
		}

		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		if _, seen := obj.values[key]; !seen {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = value
	}

	// consume closing }
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}

// decodeArray reads an array body after its opening bracket has been
// consumed, including the closing bracket.
func decodeArray(dec *json.Decoder) ([]interface{}, error) {
	var elements []interface{}

	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		elements = append(elements, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return elements, nil
}

// flattenObject converts an ordered object into a row, registering columns
// on the table in encounter order. Nested objects contribute dotted-key
// columns; arrays are stored as JSON-encoded strings.
func flattenObject(t *Table, obj *orderedObject, prefix string) Row {
	row := make(Row, len(obj.keys))
	flattenInto(t, obj, prefix, row)
	return row
}

func flattenInto(t *Table, obj *orderedObject, prefix string, row Row) {
	for _, key := range obj.keys {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		switch value := obj.values[key].(type) {
		case *orderedObject:
			flattenInto(t, value, name, row)
		case []interface{}:
			column := strings.ToUpper(name)
			t.EnsureColumn(column)
			row[column] = encodeArrayCell(value)
		default:
			column := strings.ToUpper(name)
			t.EnsureColumn(column)
			row[column] = value
		}
	}
}

// encodeArrayCell renders a nested array as a JSON string so it survives
// the trip through a flat column.
func encodeArrayCell(elements []interface{}) string {
	plain := make([]interface{}, len(elements))
	for i, e := range elements {
		plain[i] = toPlain(e)
	}
	encoded, err := json.Marshal(plain)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func toPlain(v interface{}) interface{} {
	switch value := v.(type) {
	case *orderedObject:
		m := make(map[string]interface{}, len(value.keys))
		for _, k := range value.keys {
			m[k] = toPlain(value.values[k])
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, e := range value {
			out[i] = toPlain(e)
		}
		return out
	default:
		return value
	}
}
