package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONPayload is raw JSON stored in a jsonb column. It is sent to the driver as
// text so the simple query protocol does not encode it as bytea.
type JSONPayload json.RawMessage

// Value implements driver.Valuer.
func (p JSONPayload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "null", nil
	}
	return string(p), nil
}

// Scan implements sql.Scanner.
func (p *JSONPayload) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append((*p)[:0], v...)
	case string:
		*p = JSONPayload(v)
	default:
		return fmt.Errorf("json payload: unsupported scan type %T", value)
	}
	return nil
}

func (p JSONPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *JSONPayload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}
