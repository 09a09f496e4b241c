package monitor

import (
	"context"
	"fmt"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdnd/internal/config"
	"github.com/genricoloni/mpdnd/internal/domain"
	"go.uber.org/zap"
)

// Session is the command connection used to query the current song and status.
// It is not safe for concurrent use; the watch loop owns it.
type Session struct {
	logger   *zap.Logger
	dial     Dialer
	network  string
	addr     string
	password string
	client   MPDClient
}

// NewSession creates a session that connects with dial
func NewSession(logger *zap.Logger, cfg *config.Config, dial Dialer) *Session {
	return &Session{
		logger:   logger,
		dial:     dial,
		network:  cfg.MPD.Network(),
		addr:     cfg.MPD.Address(),
		password: cfg.MPD.Password,
	}
}

// Connect dials MPD and returns a connected session.
// Failure is a domain.ErrConnection naming the address.
func Connect(logger *zap.Logger, cfg *config.Config) (*Session, error) {
	s := NewSession(logger, cfg, DialMPD)
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open establishes the initial connection
func (s *Session) Open() error {
	client, err := s.dial(s.network, s.addr, s.password)
	if err != nil {
		return fmt.Errorf("%w: connecting to MPD at %s: %w", domain.ErrConnection, s.addr, err)
	}
	s.client = client

	s.logger.Info("Connected to MPD", zap.String("address", s.addr))
	return nil
}

// Close closes the command connection
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// CurrentSong returns the current song, or nil when the queue has none
func (s *Session) CurrentSong(ctx context.Context) (*domain.Song, error) {
	attrs, err := s.query(ctx, "currentsong", MPDClient.CurrentSong)
	if err != nil {
		return nil, err
	}
	return parseSong(attrs), nil
}

// Status returns the current player status
func (s *Session) Status(ctx context.Context) (domain.Status, error) {
	attrs, err := s.query(ctx, "status", MPDClient.Status)
	if err != nil {
		return domain.Status{}, err
	}

	status, err := parseStatus(attrs)
	if err != nil {
		return domain.Status{}, fmt.Errorf("%w: status from %s: %w", domain.ErrQuery, s.addr, err)
	}
	return status, nil
}

// query runs one command, re-dialing first if a previous command failed.
// MPD drops command connections that stay idle past its connection_timeout,
// so a failed connection is discarded instead of reused.
func (s *Session) query(ctx context.Context, command string, fn func(MPDClient) (mpd.Attrs, error)) (mpd.Attrs, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuery, command, err)
	}

	if s.client == nil {
		client, err := s.dial(s.network, s.addr, s.password)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: reconnecting to %s: %w", domain.ErrQuery, command, s.addr, err)
		}
		s.client = client
		s.logger.Info("Reconnected to MPD", zap.String("address", s.addr))
	}

	attrs, err := fn(s.client)
	if err != nil {
		if closeErr := s.client.Close(); closeErr != nil {
			s.logger.Debug("Failed to close broken MPD connection", zap.Error(closeErr))
		}
		s.client = nil
		return nil, fmt.Errorf("%w: %s on %s: %w", domain.ErrQuery, command, s.addr, err)
	}
	return attrs, nil
}
