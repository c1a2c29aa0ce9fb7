package models

import (
	"bytes"
	"strings"
)

// Flag decodes the backend's loose booleans: 1/0, true/false and "1"/"0".
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}
