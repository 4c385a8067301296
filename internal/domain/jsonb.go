package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is an opaque JSONB document passed through untouched.
type JSON []byte

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("domain.JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[:0], data...)
	return nil
}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 || string(j) == "null" {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSON(nil), v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("domain.JSON: cannot scan %T", src)
	}
	return nil
}

func (l LineItems) Value() (driver.Value, error) {
	return marshalArray(l)
}

func (l *LineItems) Scan(src any) error {
	return scanArray(src, l)
}

func (v Variants) Value() (driver.Value, error) {
	return marshalArray(v)
}

func (v *Variants) Scan(src any) error {
	return scanArray(src, v)
}

func marshalArray[T any](items []T) (driver.Value, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanArray(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan jsonb array: unsupported type %T", src)
	}
	return json.Unmarshal(data, dst)
}
