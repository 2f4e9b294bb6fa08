package user

import (
	"encoding/json"
	"errors"
	"math"
)

// FieldAdmin is the attribute of the stored user record granting access to admin-only routes
const FieldAdmin = "is_admin"

// ErrNotObject is returned if a stored user record is valid JSON but not an object
var ErrNotObject = errors.New("user record is not a JSON object")

// Record represents the user record cached by the login flow.
// Only the administrator flag is interpreted; every other attribute is kept as-is.
type Record map[string]any

// Parse decodes a raw stored user record
func Parse(raw string) (Record, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Record(obj), nil
}

// IsAdmin reports whether the administrator flag of the record is truthy
func (record Record) IsAdmin() bool {
	return Truthy(record[FieldAdmin])
}

// Username returns the 'username' attribute if it is a string
func (record Record) Username() string {
	name, _ := record["username"].(string)
	return name
}

// Truthy applies JavaScript truthiness to a decoded JSON value: false, 0, NaN, "" and null are falsy, everything else
// (including empty objects and arrays) is truthy
func Truthy(value any) bool {
	switch value := value.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0 && !math.IsNaN(value)
	case json.Number:
		f, err := value.Float64()
		return err != nil || f != 0
	case string:
		return value != ""
	default:
		return true
	}
}
