package config

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultShortcut is the capture hotkey used when the configured one is
// missing or invalid.
const DefaultShortcut = "Ctrl+Shift+S"

var modifierOrder = []string{"Ctrl", "Alt", "Shift", "Super"}

var modifierAliases = map[string]string{
	"CTRL":    "Ctrl",
	"CONTROL": "Ctrl",
	"ALT":     "Alt",
	"SHIFT":   "Shift",
	"SUPER":   "Super",
	"WIN":     "Super",
	"META":    "Super",
}

var namedKeys = map[string]string{
	"SPACE":  "Space",
	"TAB":    "Tab",
	"ESC":    "Esc",
	"ESCAPE": "Escape",
	"ENTER":  "Enter",
	"PRINT":  "Print",
}

// NormalizeShortcut rewrites a shortcut to its canonical form: modifiers
// deduplicated and ordered Ctrl, Alt, Shift, Super, followed by exactly one
// key token ("ctrl + shift+s" becomes "Ctrl+Shift+S").
func NormalizeShortcut(value string) (string, error) {
	parts := splitShortcut(value)
	if len(parts) == 0 {
		return "", fmt.Errorf("shortcut cannot be empty")
	}

	seen := map[string]bool{}
	key := ""
	for _, part := range parts {
		if mod, ok := modifierAliases[strings.ToUpper(strings.Trim(part, "<>"))]; ok {
			seen[mod] = true
			continue
		}
		if key != "" {
			return "", fmt.Errorf("shortcut must contain exactly one non-modifier key")
		}
		normalized, err := normalizeKeyToken(part)
		if err != nil {
			return "", err
		}
		key = normalized
	}
	if key == "" {
		return "", fmt.Errorf("shortcut must include a key")
	}

	out := make([]string, 0, len(seen)+1)
	for _, mod := range modifierOrder {
		if seen[mod] {
			out = append(out, mod)
		}
	}
	return strings.Join(append(out, key), "+"), nil
}

func splitShortcut(value string) []string {
	var parts []string
	for _, part := range strings.Split(value, "+") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func normalizeKeyToken(token string) (string, error) {
	runes := []rune(token)
	if len(runes) == 1 {
		return strings.ToUpper(token), nil
	}
	upper := strings.ToUpper(token)
	if named, ok := namedKeys[upper]; ok {
		return named, nil
	}
	if strings.HasPrefix(upper, "F") && isDigits(upper[1:]) {
		return upper, nil
	}
	if isAlpha(token) {
		return strings.ToUpper(token[:1]) + strings.ToLower(token[1:]), nil
	}
	return "", fmt.Errorf("unsupported shortcut key: %s", token)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
