package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice is a thin wrapper around []string that implements
// sql.Scanner and driver.Valuer so it works transparently with jsonb/text columns.
type StringSlice []string

// Scan implements sql.Scanner
func (s *StringSlice) Scan(src interface{}) error {
	if s == nil {
		return fmt.Errorf("dbtypes: Scan on nil *StringSlice")
	}
	if src == nil {
		*s = []string{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		var out []string
		if err := json.Unmarshal(v, &out); err != nil {
			return err
		}
		*s = out
		return nil
	case string:
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return err
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("dbtypes: cannot scan type %T into StringSlice", src)
	}
}

// Value implements driver.Valuer
// Marshals the slice to JSON (works well with jsonb columns).
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// FlavorProfile holds the five structured tasting ratings, each in [1,5].
// Stored as a single jsonb column.
type FlavorProfile struct {
	Sweet  int `json:"sweet"`
	Sour   int `json:"sour"`
	Body   int `json:"body"`
	Scent  int `json:"scent"`
	Throat int `json:"throat"`
}

// Scan implements sql.Scanner
func (f *FlavorProfile) Scan(src interface{}) error {
	if f == nil {
		return fmt.Errorf("dbtypes: Scan on nil *FlavorProfile")
	}
	if src == nil {
		*f = FlavorProfile{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("dbtypes: cannot scan type %T into FlavorProfile", src)
	}
}

// Value implements driver.Valuer
func (f FlavorProfile) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// InRange reports whether every rating sits inside [1,5].
func (f FlavorProfile) InRange() bool {
	for _, v := range []int{f.Sweet, f.Sour, f.Body, f.Scent, f.Throat} {
		if v < 1 || v > 5 {
			return false
		}
	}
	return true
}
