package ical

import (
	"encoding/json"
	"fmt"
)

// MaxUnknownPropertySize caps the encoded size of a preserved unknown
// property. Larger properties are dropped instead of stored.
const MaxUnknownPropertySize = 25000

// UnknownProperty is a property the codec does not interpret but carries
// through storage verbatim as a JSON tuple [name, value, {params}].
type UnknownProperty struct {
	Name   string
	Value  string
	Params map[string]string
}

func (p UnknownProperty) EncodeJSON() (string, error) {
	params := p.Params
	if params == nil {
		params = map[string]string{}
	}
	raw, err := json.Marshal([]any{p.Name, p.Value, params})
	if err != nil {
		return "", fmt.Errorf("UnknownProperty.EncodeJSON: %w", err)
	}
	return string(raw), nil
}

func DecodeUnknownProperty(s string) (UnknownProperty, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal([]byte(s), &tuple); err != nil {
		return UnknownProperty{}, fmt.Errorf("DecodeUnknownProperty: %w", err)
	}
	if len(tuple) < 2 {
		return UnknownProperty{}, fmt.Errorf("DecodeUnknownProperty: tuple has %d elements", len(tuple))
	}
	var p UnknownProperty
	if err := json.Unmarshal(tuple[0], &p.Name); err != nil {
		return UnknownProperty{}, fmt.Errorf("DecodeUnknownProperty: name: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &p.Value); err != nil {
		return UnknownProperty{}, fmt.Errorf("DecodeUnknownProperty: value: %w", err)
	}
	if len(tuple) > 2 {
		if err := json.Unmarshal(tuple[2], &p.Params); err != nil {
			return UnknownProperty{}, fmt.Errorf("DecodeUnknownProperty: params: %w", err)
		}
	}
	return p, nil
}
