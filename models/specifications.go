package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Measure is a single dimension entered in the design wizard. The form sends text,
// catalog products send numbers; both are kept as text.
type Measure string

func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Measure(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("dimension must be a string or number: %w", err)
	}
	*m = Measure(n.String())
	return nil
}

// Dimensions are width, depth and height in centimetres. Any other key the
// wizard sends with them (a unit, a seat height) is kept in Extra.
type Dimensions struct {
	W     Measure
	D     Measure
	H     Measure
	Extra map[string]any

	blank map[string]bool
}

const (
	dimWidth  = "w"
	dimDepth  = "d"
	dimHeight = "h"
)

// MarshalJSON writes the measures that were given plus Extra
func (d Dimensions) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+3)
	for k, v := range d.Extra {
		out[k] = v
	}
	for key, m := range map[string]Measure{dimWidth: d.W, dimDepth: d.D, dimHeight: d.H} {
		if m != "" || d.blank[key] {
			out[key] = m
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes w, d and h as measures; anything else lands in Extra
func (d *Dimensions) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("dimensions must be an object: %w", err)
	}

	var out Dimensions
	for key, raw := range fields {
		var target *Measure
		switch key {
		case dimWidth:
			target = &out.W
		case dimDepth:
			target = &out.D
		case dimHeight:
			target = &out.H
		}
		if target != nil && json.Unmarshal(raw, target) == nil {
			if *target == "" {
				out.blank = markBlank(out.blank, key)
			}
			continue
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("dimensions.%s: %w", key, err)
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[key] = value
	}

	*d = out
	return nil
}

// Specifications holds the wizard answers. The well-known answers are typed;
// anything else the wizard sends lands in Extra and is written back verbatim.
// Known answers the wizard sent blank are written back blank.
// Every storage encoding goes through the JSON form so the stored document
// matches what clients sent.
type Specifications struct {
	Style      string
	Materials  []string
	Dimensions *Dimensions
	Finishes   string
	Notes      string
	Extra      map[string]any

	blank map[string]bool
}

const (
	specStyle      = "style"
	specMaterials  = "materials"
	specDimensions = "dimensions"
	specFinishes   = "finishes"
	specNotes      = "notes"
)

func markBlank(blank map[string]bool, key string) map[string]bool {
	if blank == nil {
		blank = make(map[string]bool)
	}
	blank[key] = true
	return blank
}

// IsZero reports whether no answer was captured
func (s Specifications) IsZero() bool {
	return s.Style == "" && len(s.Materials) == 0 && s.Dimensions == nil &&
		s.Finishes == "" && s.Notes == "" && len(s.Extra) == 0 && len(s.blank) == 0
}

// MarshalJSON flattens the typed answers and Extra into one object
func (s Specifications) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+5)
	for k, v := range s.Extra {
		out[k] = v
	}
	for key, v := range map[string]string{specStyle: s.Style, specFinishes: s.Finishes, specNotes: s.Notes} {
		if v != "" || s.blank[key] {
			out[key] = v
		}
	}
	if len(s.Materials) > 0 {
		out[specMaterials] = s.Materials
	} else if s.blank[specMaterials] {
		out[specMaterials] = []string{}
	}
	if s.Dimensions != nil {
		out[specDimensions] = s.Dimensions
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the known keys into their typed fields. A known key whose
// value has an unexpected shape is kept in Extra rather than rejected.
func (s *Specifications) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Specifications{}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("specifications must be an object: %w", err)
	}

	var out Specifications
	for key, raw := range fields {
		var ok, blank bool
		switch key {
		case specStyle, specFinishes, specNotes:
			var v string
			if ok = json.Unmarshal(raw, &v) == nil; ok {
				blank = v == ""
				switch key {
				case specStyle:
					out.Style = v
				case specFinishes:
					out.Finishes = v
				default:
					out.Notes = v
				}
			}
		case specMaterials:
			var v []string
			if ok = json.Unmarshal(raw, &v) == nil && v != nil; ok {
				blank = len(v) == 0
				if !blank {
					out.Materials = v
				}
			}
		case specDimensions:
			var v Dimensions
			if ok = json.Unmarshal(raw, &v) == nil; ok {
				out.Dimensions = &v
			}
		}
		if blank {
			out.blank = markBlank(out.blank, key)
		}
		if ok {
			continue
		}

		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("specifications.%s: %w", key, err)
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[key] = value
	}

	*s = out
	return nil
}

// Value implements driver.Valuer
func (s Specifications) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode specifications: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner
func (s *Specifications) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = Specifications{}
		return nil
	case string:
		return s.UnmarshalJSON([]byte(v))
	case []byte:
		return s.UnmarshalJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into Specifications", src)
	}
}

// MarshalBSON implements bson.Marshaler
func (s Specifications) MarshalBSON() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode specifications: %w", err)
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert specifications: %w", err)
	}
	return bson.Marshal(doc)
}

// UnmarshalBSON implements bson.Unmarshaler
func (s *Specifications) UnmarshalBSON(data []byte) error {
	raw, err := bson.MarshalExtJSON(bson.Raw(data), false, false)
	if err != nil {
		return fmt.Errorf("failed to convert specifications: %w", err)
	}
	return s.UnmarshalJSON(raw)
}
