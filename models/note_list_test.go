package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNoteListMarshalJSONNeverNull(t *testing.T) {
	var notes NoteList
	out, err := json.Marshal(notes)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	out, err = json.Marshal(NoteList{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(out))
}

func TestNoteListValueAndScan(t *testing.T) {
	var empty NoteList
	value, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	var notes NoteList
	require.NoError(t, notes.Scan(`["1/2/2026, 3:04:05 PM: called customer"]`))
	assert.Equal(t, NoteList{"1/2/2026, 3:04:05 PM: called customer"}, notes)

	for _, src := range []any{nil, "", []byte("  "), "null"} {
		require.NoError(t, notes.Scan(src))
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	}

	assert.Error(t, notes.Scan(12))
	assert.Error(t, notes.Scan("{not json"))
}

func TestNoteListBSON(t *testing.T) {
	type doc struct {
		Notes NoteList `bson:"notes"`
	}

	data, err := bson.Marshal(doc{})
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	arr, ok := raw["notes"].(bson.A)
	require.True(t, ok, "nil notes must be stored as an array, got %T", raw["notes"])
	assert.Empty(t, arr)

	data, err = bson.Marshal(doc{Notes: NoteList{"first", "second"}})
	require.NoError(t, err)
	var decoded doc
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.Equal(t, NoteList{"first", "second"}, decoded.Notes)
}

func TestNoteListBSONLegacyShapes(t *testing.T) {
	type doc struct {
		Notes NoteList `bson:"notes"`
	}

	tests := []struct {
		name string
		in   bson.M
		want NoteList
	}{
		{"null", bson.M{"notes": nil}, nil},
		{"single string", bson.M{"notes": "legacy note"}, NoteList{"legacy note"}},
		{"blank string", bson.M{"notes": "  "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(tt.in)
			require.NoError(t, err)

			var decoded doc
			require.NoError(t, bson.Unmarshal(data, &decoded))
			if tt.want == nil {
				assert.Empty(t, decoded.Notes)
				return
			}
			assert.Equal(t, tt.want, decoded.Notes)
		})
	}

	data, err := bson.Marshal(bson.M{"notes": 7})
	require.NoError(t, err)
	var decoded doc
	assert.Error(t, bson.Unmarshal(data, &decoded))
}
