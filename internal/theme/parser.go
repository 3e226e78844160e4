package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// Parse reads a theme definition, one "Key: value" pair per line. Keys are
// the Theme field names; color values are #RRGGBB or #RRGGBBAA. Unknown keys
// are skipped so newer files load on older builds. Fields the file does not
// mention keep their Default() values.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	fields := reflect.ValueOf(t).Elem()
	colorType := reflect.TypeOf(color.RGBA{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := splitPair(scanner.Text())
		if !ok {
			continue
		}
		if key == "Name" {
			t.Name = value
			continue
		}
		field := fields.FieldByName(key)
		if !field.IsValid() || field.Type() != colorType {
			continue
		}
		col, err := parseHexColor(value)
		if err != nil {
			return nil, fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		field.Set(reflect.ValueOf(col))
	}
	return t, scanner.Err()
}

// splitPair extracts a key/value pair from one line, reporting false for
// blank lines, comments and lines without a separator.
func splitPair(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return "", "", false
	}
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func parseHexColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("color must start with #")
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex length")
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	if len(hex) == 6 {
		val = val<<8 | 0xFF
	}
	return color.RGBA{
		R: uint8(val >> 24),
		G: uint8(val >> 16),
		B: uint8(val >> 8),
		A: uint8(val),
	}, nil
}
