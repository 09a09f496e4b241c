package notifier

import (
	"context"
	"fmt"

	"github.com/genricoloni/mpdnd/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// Connector opens a D-Bus client
type Connector func() (DBusClient, error)

// DBusNotifier shows notifications through the freedesktop notification server.
// The session bus is dialed lazily so a missing notification daemon only
// fails individual notifications.
type DBusNotifier struct {
	logger  *zap.Logger
	connect Connector
	conn    DBusClient
}

// NewDBusNotifier creates a notifier using the session bus
func NewDBusNotifier(logger *zap.Logger) *DBusNotifier {
	return NewNotifier(logger, func() (DBusClient, error) {
		c, err := NewStdDBusClient()
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// NewNotifier creates a notifier that obtains its client from connect
func NewNotifier(logger *zap.Logger, connect Connector) *DBusNotifier {
	return &DBusNotifier{
		logger:  logger,
		connect: connect,
	}
}

// Show displays the notification. Failures wrap domain.ErrDisplay.
func (n *DBusNotifier) Show(ctx context.Context, content domain.NotificationContent) error {
	conn, err := n.client()
	if err != nil {
		return fmt.Errorf("%w: connecting to session bus: %w", domain.ErrDisplay, err)
	}

	id, err := conn.Notify(ctx, content.AppName, 0, content.Icon, content.Summary, content.Body,
		[]string{}, map[string]dbus.Variant{}, content.Timeout)
	if err != nil {
		// The bus connection may be gone; start over on the next notification
		n.reset()
		return fmt.Errorf("%w: %s.Notify: %w", domain.ErrDisplay, notificationsInterface, err)
	}

	n.logger.Debug("Notification shown",
		zap.Uint32("id", id),
		zap.String("summary", content.Summary),
		zap.String("icon", content.Icon))
	return nil
}

// Probe logs which notification server is running. It never fails startup.
func (n *DBusNotifier) Probe(ctx context.Context) {
	conn, err := n.client()
	if err != nil {
		n.logger.Warn("Session bus unavailable, notifications will fail until it is", zap.Error(err))
		return
	}

	name, vendor, version, specVersion, err := conn.ServerInformation(ctx)
	if err != nil {
		n.logger.Warn("No notification server answered", zap.Error(err))
		return
	}

	n.logger.Info("Notification server detected",
		zap.String("name", name),
		zap.String("vendor", vendor),
		zap.String("version", version),
		zap.String("spec_version", specVersion))
}

// Close closes the D-Bus connection if one is open
func (n *DBusNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

func (n *DBusNotifier) client() (DBusClient, error) {
	if n.conn != nil {
		return n.conn, nil
	}
	conn, err := n.connect()
	if err != nil {
		return nil, err
	}
	n.conn = conn
	return conn, nil
}

func (n *DBusNotifier) reset() {
	if err := n.Close(); err != nil {
		n.logger.Debug("Failed to close D-Bus connection", zap.Error(err))
	}
}
