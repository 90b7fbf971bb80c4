package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Payload holds a raw JSON document exactly as it was received.
//
// It is stored in a Postgres `json` column (not `jsonb`, which would
// re-serialize the document) or a SQLite `text` column, so the bytes read
// back are the bytes written.
type Payload []byte

// Valid reports whether p is a syntactically valid JSON document.
func (p Payload) Valid() bool { return len(p) > 0 && json.Valid(p) }

// Value implements driver.Valuer.
func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

// Scan implements sql.Scanner. The source buffer is copied because drivers
// may reuse it after Scan returns.
func (p *Payload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append((*p)[:0:0], v...)
	case string:
		*p = Payload(v)
	default:
		return fmt.Errorf("domain: cannot scan %T into Payload", src)
	}
	return nil
}

// MarshalJSON emits the stored document as-is.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON captures the raw document.
func (p *Payload) UnmarshalJSON(b []byte) error {
	if p == nil {
		return errors.New("domain: UnmarshalJSON on nil Payload")
	}
	*p = append((*p)[:0:0], b...)
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (Payload) GormDataType() string { return "json" }

// GormDBDataType picks the column type per dialect.
func (Payload) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "json"
	case "sqlite":
		return "text"
	default:
		return "json"
	}
}
