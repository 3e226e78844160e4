// Package platform sends desktop notifications through whatever mechanism
// the host OS provides.
package platform

// appName is the identity notifications are filed under.
const appName = "Screenux"

// Options carries per-notification extras.
type Options struct {
	// IconPath names an image file to show alongside the notification, on
	// platforms that support one.
	IconPath string
}
