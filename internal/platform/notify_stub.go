//go:build !linux && !darwin && !windows

package platform

// Notify silently drops the notification; this platform has no known
// notification mechanism.
func Notify(title, body string, opts Options) error {
	return nil
}
