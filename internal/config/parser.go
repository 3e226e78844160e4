package config

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/example/screenux/internal/theme"
)

// keyHandler applies one key/value pair to the section being parsed.
type keyHandler func(key, value string) error

// Parse reads rc-format configuration: "key = value" (or "key: value") pairs,
// with optional [notify] and [theme.NAME] sections. Keys in unknown sections
// are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	apply := cfg.setRootKey

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			apply = cfg.sectionHandler(line[1 : len(line)-1])
			continue
		}
		key, value, ok := cutKeyValue(line)
		if !ok || apply == nil {
			continue
		}
		if err := apply(key, value); err != nil {
			return nil, err
		}
	}
	return cfg, scanner.Err()
}

// cutKeyValue splits a line at the first '=' (or ':' when no '=' exists) and
// strips surrounding quotes from the value.
func cutKeyValue(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, "=")
	if !ok {
		key, value, ok = strings.Cut(line, ":")
	}
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func (c *Config) sectionHandler(section string) keyHandler {
	if section == "notify" {
		return func(key, value string) error {
			if err := c.Notify.set(key, value); err != nil {
				return fmt.Errorf("error in section [notify]: %w", err)
			}
			return nil
		}
	}
	if name, ok := strings.CutPrefix(section, "theme."); ok {
		// Missing keys keep their defaults.
		t := theme.Default()
		t.Name = name
		c.Themes[name] = t
		return func(key, value string) error {
			if err := setThemeField(t, key, value); err != nil {
				return fmt.Errorf("error in section [%s]: %w", section, err)
			}
			return nil
		}
	}
	return nil
}

func (c *Config) setRootKey(key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		c.Theme = value
	case "save_dir":
		c.SaveDir = value
	case "hotkey":
		// A broken shortcut falls back to the default rather than making
		// the whole config unreadable.
		if normalized, err := NormalizeShortcut(value); err == nil {
			c.Hotkey = normalized
		} else {
			c.Hotkey = DefaultShortcut
		}
	}
	return nil
}

func (n *Notify) set(key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "capture":
		n.Capture = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setThemeField(t *theme.Theme, key, value string) error {
	if strings.EqualFold(key, "Name") {
		t.Name = value
		return nil
	}

	// Theme field names match keys case-insensitively; unknown keys are
	// skipped for forward compatibility.
	fields := reflect.ValueOf(t).Elem()
	typ := fields.Type()
	for i := 0; i < typ.NumField(); i++ {
		if !strings.EqualFold(typ.Field(i).Name, key) {
			continue
		}
		field := fields.Field(i)
		if field.Type() != reflect.TypeOf(color.RGBA{}) {
			return nil
		}
		col, err := parseColor(value)
		if err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		field.Set(reflect.ValueOf(col))
		return nil
	}
	return nil
}

// parseColor parses #RRGGBB or #RRGGBBAA. internal/theme keeps its own copy;
// sharing it would force one package to export a helper neither needs
// publicly.
func parseColor(s string) (color.RGBA, error) {
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
