package utils

import (
	"fmt"
	"strings"
)

// ToString renders a stored value as text. Byte slices are taken as raw text.
func ToString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool reads a query flag. "1", "true", "yes" and "on" are true in any case;
// anything else, including an absent flag, is false.
func ToBool(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
