package models

import (
	"database/sql/driver"

	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// NoteList is the append-only admin note history of an order, oldest first.
// It shares the StringList encodings.
type NoteList []string

func (n NoteList) MarshalJSON() ([]byte, error) {
	return StringList(n).MarshalJSON()
}

// Value implements driver.Valuer
func (n NoteList) Value() (driver.Value, error) {
	return StringList(n).Value()
}

// Scan implements sql.Scanner
func (n *NoteList) Scan(src any) error {
	var list StringList
	if err := list.Scan(src); err != nil {
		return err
	}
	*n = NoteList(list)
	return nil
}

func (n NoteList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return StringList(n).MarshalBSONValue()
}

// UnmarshalBSONValue also reads documents written when notes were a single string
func (n *NoteList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var list StringList
	if err := list.UnmarshalBSONValue(t, data); err != nil {
		return err
	}
	*n = NoteList(list)
	return nil
}
