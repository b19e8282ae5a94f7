package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/conversation/ports"
	trackingservice "tracking-bot/internal/features/tracking/service"

	"go.uber.org/zap"
)

// Dispatcher routes inbound chat messages: prefixed commands start a
// registration or list trackings, anything else is offered to the user's
// active session and silently dropped when there is none.
type Dispatcher struct {
	prefix    string
	sessions  *SessionManager
	registry  *trackingservice.Registry
	statuses  *trackingservice.StatusService
	messenger ports.Messenger
	logger    *zap.Logger
}

// NewDispatcher creates a new Dispatcher with the given command prefix.
func NewDispatcher(
	prefix string,
	sessions *SessionManager,
	registry *trackingservice.Registry,
	statuses *trackingservice.StatusService,
	messenger ports.Messenger,
) *Dispatcher {
	return &Dispatcher{
		prefix:    prefix,
		sessions:  sessions,
		registry:  registry,
		statuses:  statuses,
		messenger: messenger,
		logger:    logger.Get(),
	}
}

// HandleMessage processes one inbound message from a user's private channel.
func (d *Dispatcher) HandleMessage(ctx context.Context, userID, channelID, text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case d.prefix + "register":
		return d.sessions.Start(ctx, userID, channelID)
	case d.prefix + "check":
		return d.check(ctx, userID, channelID)
	default:
		err := d.sessions.HandleReply(ctx, userID, text)
		if errors.Is(err, ErrNoActiveSession) {
			// Ordinary chatter outside any exchange is not ours to answer.
			return nil
		}
		return err
	}
}

// FormatTrackings returns one formatted status block per registered shipment,
// in registration order. A failing lookup degrades that one block and never
// aborts the rest.
func (d *Dispatcher) FormatTrackings(ctx context.Context, userID string) []string {
	shipments := d.registry.List(ctx, userID)

	blocks := make([]string, 0, len(shipments))
	for _, s := range shipments {
		status, err := d.statuses.GetStatus(ctx, s.TrackingNumber, s.Carrier)
		if err != nil {
			d.logger.Warn("Status lookup failed while listing trackings",
				zap.String("user_id", userID),
				zap.String("tracking_number", s.TrackingNumber),
				zap.Error(err),
			)
		}
		blocks = append(blocks, FormatOutcome(s.TrackingNumber, s.Carrier, status, err))
	}
	return blocks
}

func (d *Dispatcher) check(ctx context.Context, userID, channelID string) error {
	blocks := d.FormatTrackings(ctx, userID)

	if len(blocks) == 0 {
		notice := fmt.Sprintf("You have no tracking numbers registered. Use `%sregister` first.", d.prefix)
		return d.messenger.Send(ctx, userID, channelID, notice)
	}

	header := fmt.Sprintf("📦 You have %d tracking number(s):", len(blocks))
	if err := d.messenger.Send(ctx, userID, channelID, header); err != nil {
		return fmt.Errorf("failed to send tracking list header: %w", err)
	}

	for _, block := range blocks {
		if err := d.messenger.Send(ctx, userID, channelID, block); err != nil {
			return fmt.Errorf("failed to send tracking status: %w", err)
		}
	}
	return nil
}
