//go:build linux

package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall  = notifyDest + ".Notify"
	urgencyLow  = byte(0)
	categoryKey = "category"
)

// Notify sends a desktop notification over the session bus using the
// freedesktop notification interface.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{
		"urgency":   dbus.MakeVariant(urgencyLow),
		categoryKey: dbus.MakeVariant("transfer.complete"),
	}
	var id uint32
	err = conn.Object(notifyDest, notifyPath).Call(notifyCall, 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, opts.expireMillis()).Store(&id)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
