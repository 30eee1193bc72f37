package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringList is a list of short strings (materials, tags, filter values).
// SQL stores it as a JSON text column; mongo stores it as an array.
type StringList []string

// MarshalJSON never emits null so clients always see an array
func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Value implements driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	raw, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner
func (s *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		*s = StringList{}
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	*s = values
	return nil
}

// MarshalBSONValue always writes an array; a null field would make $push fail
func (s StringList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if s == nil {
		s = StringList{}
	}
	return bson.MarshalValue([]string(s))
}

// UnmarshalBSONValue accepts arrays, null, and legacy single-string documents
func (s *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*s = StringList{}
		return nil
	case bsontype.Array:
		var values []string
		if err := bson.UnmarshalValue(t, data, &values); err != nil {
			return err
		}
		if values == nil {
			values = []string{}
		}
		*s = values
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		if strings.TrimSpace(value) == "" {
			*s = StringList{}
			return nil
		}
		*s = StringList{value}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into StringList", t)
	}
}
