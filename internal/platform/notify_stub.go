//go:build !linux && !darwin

package platform

// Notify is a no-op on platforms without a supported notification service.
func Notify(title, body string, opts Options) error {
	return nil
}
