package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// OptionType is a selectable axis such as size or colour.
type OptionType struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func (t OptionType) Allows(value string) bool {
	for _, v := range t.Values {
		if v == value {
			return true
		}
	}
	return false
}

type ProductOption struct {
	ID   string `db:"id"`
	Type int    `db:"type"`
	Name string `db:"name"`
}

// OptionValues maps an option type id to the chosen value. A missing key
// means the option is unspecified.
type OptionValues map[int]string

func (o OptionValues) Get(typeID int) (string, bool) {
	v, ok := o[typeID]
	return v, ok
}

func (o OptionValues) IsEmpty() bool {
	return len(o) == 0
}

// Equal reports whether both maps carry the same values, treating nil and
// empty as equal.
func (o OptionValues) Equal(other OptionValues) bool {
	if len(o) != len(other) {
		return false
	}
	for k, v := range o {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (o OptionValues) Value() (driver.Value, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o)
}

func (o *OptionValues) Scan(src any) error {
	return scanJSON(src, o)
}

// OptionFilter restricts variations to any of the listed values per type.
type OptionFilter map[int][]string

func (f OptionFilter) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

func (f *OptionFilter) Scan(src any) error {
	return scanJSON(src, f)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported json column type")
	}
}
