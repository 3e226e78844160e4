//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

// expireTimeoutMs is how long the notification stays up before the daemon
// may dismiss it.
const expireTimeoutMs = 5000

// Notify posts a notification over the org.freedesktop.Notifications bus
// interface.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	return obj.Call("org.freedesktop.Notifications.Notify", 0,
		appName,
		uint32(0), // no notification to replace
		opts.IconPath,
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		int32(expireTimeoutMs),
	).Err
}
