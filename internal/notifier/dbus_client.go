package notifier

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest      = "org.freedesktop.Notifications"
	notificationsPath      = dbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsInterface = "org.freedesktop.Notifications"
)

// DBusClient defines the org.freedesktop.Notifications calls we make.
// This abstraction allows us to mock D-Bus interactions in tests.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/genricoloni/mpdnd/internal/notifier DBusClient
type DBusClient interface {
	// Notify sends a notification and returns its server-assigned id
	Notify(ctx context.Context, appName string, replacesID uint32, appIcon, summary, body string,
		actions []string, hints map[string]dbus.Variant, expireTimeout int32) (uint32, error)

	// ServerInformation queries the notification server identity
	ServerInformation(ctx context.Context) (name, vendor, version, specVersion string, err error)

	// Close closes the D-Bus connection
	Close() error
}

// StdDBusClient is the real implementation using godbus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient opens a private connection to the session bus
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Notify calls org.freedesktop.Notifications.Notify
func (c *StdDBusClient) Notify(ctx context.Context, appName string, replacesID uint32, appIcon, summary, body string,
	actions []string, hints map[string]dbus.Variant, expireTimeout int32) (uint32, error) {
	var id uint32
	err := c.object().CallWithContext(ctx, notificationsInterface+".Notify", 0,
		appName, replacesID, appIcon, summary, body, actions, hints, expireTimeout).Store(&id)
	return id, err
}

// ServerInformation calls org.freedesktop.Notifications.GetServerInformation
func (c *StdDBusClient) ServerInformation(ctx context.Context) (name, vendor, version, specVersion string, err error) {
	err = c.object().CallWithContext(ctx, notificationsInterface+".GetServerInformation", 0).
		Store(&name, &vendor, &version, &specVersion)
	return name, vendor, version, specVersion, err
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

func (c *StdDBusClient) object() dbus.BusObject {
	return c.conn.Object(notificationsDest, notificationsPath)
}
