package models

import (
	"encoding/json"
	"strings"
)

// foldEnum decodes a JSON string and upper-cases it, so "hr" binds as "HR".
func foldEnum(b []byte) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(s)), nil
}
