package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// StringSlice persists a []string as a JSONB column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}

	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, errors.Wrap(err, "marshal string slice")
	}

	return string(data), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = nil

		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported string slice source type %T", value)
	}

	return errors.Wrap(json.Unmarshal(data, (*[]string)(s)), "unmarshal string slice")
}

// GormDataType tells GORM the column type for migrations.
func (StringSlice) GormDataType() string {
	return "jsonb"
}
