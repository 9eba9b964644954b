package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidAddress = errors.New("address must be a string or an object")

// DecodeAddress interprets a stored profile address. Exactly one of text or
// structured is set for a non-empty address; both are zero when raw is empty or null.
func DecodeAddress(raw []byte) (text string, structured *StructuredAddress, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil, nil
	}

	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", nil, ErrInvalidAddress
		}
		return strings.TrimSpace(text), nil, nil
	case '{':
		var addr StructuredAddress
		if err := json.Unmarshal(raw, &addr); err != nil {
			return "", nil, ErrInvalidAddress
		}
		return "", &addr, nil
	default:
		return "", nil, ErrInvalidAddress
	}
}

// Join renders the address as "line1, city, state, pincode, country" without empty parts
func (a StructuredAddress) Join() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Line1, a.City, a.State, a.Pincode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
