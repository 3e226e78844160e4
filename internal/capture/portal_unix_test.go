//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestParsePortalResponseSuccess(t *testing.T) {
	body := []interface{}{uint32(0), map[string]dbus.Variant{
		"uri": dbus.MakeVariant("file:///tmp/portal123.png"),
	}}
	uri, err := parsePortalResponse(body)
	if err != nil {
		t.Fatalf("parsePortalResponse returned error: %v", err)
	}
	if uri != "file:///tmp/portal123.png" {
		t.Fatalf("uri = %q", uri)
	}
}

func TestParsePortalResponseCancelled(t *testing.T) {
	body := []interface{}{uint32(1), map[string]dbus.Variant{}}
	if _, err := parsePortalResponse(body); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestParsePortalResponseFailureCode(t *testing.T) {
	body := []interface{}{uint32(2), map[string]dbus.Variant{}}
	_, err := parsePortalResponse(body)
	if err == nil || errors.Is(err, ErrCancelled) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	if !strings.Contains(err.Error(), "code 2") {
		t.Fatalf("expected code in message, got %v", err)
	}
}

func TestParsePortalResponseMalformed(t *testing.T) {
	tests := [][]interface{}{
		nil,
		{uint32(0)},
		{"nope", map[string]dbus.Variant{}},
		{uint32(0), "nope"},
		{uint32(0), map[string]dbus.Variant{}},
		{uint32(0), map[string]dbus.Variant{"uri": dbus.MakeVariant(7)}},
	}
	for i, body := range tests {
		if _, err := parsePortalResponse(body); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestPortalHandleTokensAreUnique(t *testing.T) {
	a := portalHandleToken()
	b := portalHandleToken()
	if a == b {
		t.Fatalf("tokens collided: %q", a)
	}
	if !strings.HasPrefix(a, "screenux_") {
		t.Fatalf("token = %q", a)
	}
}

func TestPortalOptionsCursorMode(t *testing.T) {
	opts := portalOptions(Options{IncludeCursor: true, Interactive: true})
	if got := opts["cursor_mode"].Value(); got != "embedded" {
		t.Errorf("cursor_mode = %v, want embedded", got)
	}
	if got := opts["interactive"].Value(); got != true {
		t.Errorf("interactive = %v, want true", got)
	}

	opts = portalOptions(Options{})
	if got := opts["cursor_mode"].Value(); got != "hidden" {
		t.Errorf("cursor_mode = %v, want hidden", got)
	}
}
