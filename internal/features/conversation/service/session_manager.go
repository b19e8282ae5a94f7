package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/features/conversation/domain"
	"tracking-bot/internal/features/conversation/ports"
	trackingdomain "tracking-bot/internal/features/tracking/domain"
	trackingservice "tracking-bot/internal/features/tracking/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoActiveSession is returned when a reply arrives for a user with no
// in-flight registration exchange.
var ErrNoActiveSession = errors.New("no active registration session")

const (
	promptTrackingNumber = "📦 Let's register a new tracking number. What is your **tracking number**?"
	promptCarrier        = "What is the **carrier**? (UPS, FedEx, USPS, DHL)"
	promptCarrierUPS     = "That looks like **UPS** 📦 — confirm carrier or type another:"
	msgUnknownCarrier    = "I don't recognize that carrier. Please type one of: UPS, FedEx, USPS, DHL."
	msgRegistered        = "✅ Tracking number registered successfully!"
	msgAlreadyRegistered = "ℹ️ That tracking number is already registered."
	msgFailure           = "❌ Something went wrong. Please try again."
)

// activeSession pairs a session with its timeout timer. Its mutex serializes
// reply processing so one user's messages are handled in arrival order.
type activeSession struct {
	mu      sync.Mutex
	session domain.Session
	timer   *time.Timer
}

// SessionManager owns the table of in-flight registration exchanges, at most
// one per user. A second start supersedes the first. The timeout covers the
// whole two-step exchange and is not reset by intermediate replies.
type SessionManager struct {
	messenger    ports.Messenger
	registry     *trackingservice.Registry
	statuses     *trackingservice.StatusService
	timeout      time.Duration
	retryCommand string

	mu       sync.Mutex
	sessions map[string]*activeSession
	logger   *zap.Logger
}

// NewSessionManager creates a new SessionManager. retryCommand is the
// user-facing command mentioned in the timeout notice (e.g. "!register").
func NewSessionManager(
	messenger ports.Messenger,
	registry *trackingservice.Registry,
	statuses *trackingservice.StatusService,
	timeout time.Duration,
	retryCommand string,
) *SessionManager {
	return &SessionManager{
		messenger:    messenger,
		registry:     registry,
		statuses:     statuses,
		timeout:      timeout,
		retryCommand: retryCommand,
		sessions:     make(map[string]*activeSession),
		logger:       logger.Get(),
	}
}

// Start begins a registration exchange for the user in the given private
// channel, superseding any exchange already in flight.
func (m *SessionManager) Start(ctx context.Context, userID, channelID string) error {
	s := &activeSession{
		session: domain.Session{
			ID:        uuid.NewString(),
			UserID:    userID,
			ChannelID: channelID,
			State:     domain.SessionAwaitingTrackingNumber,
			StartedAt: time.Now(),
		},
	}
	s.timer = time.AfterFunc(m.timeout, func() { m.expire(s) })

	m.mu.Lock()
	if prev, ok := m.sessions[userID]; ok {
		prev.timer.Stop()
		m.logger.Info("Superseding active registration session",
			zap.String("user_id", userID),
			zap.String("session_id", prev.session.ID),
		)
	}
	m.sessions[userID] = s
	m.mu.Unlock()

	m.logger.Debug("Registration session started",
		zap.String("user_id", userID),
		zap.String("session_id", s.session.ID),
	)

	if err := m.messenger.Send(ctx, userID, channelID, promptTrackingNumber); err != nil {
		s.timer.Stop()
		m.removeIfCurrent(s)
		return fmt.Errorf("failed to send registration prompt: %w", err)
	}
	return nil
}

// HandleReply advances the user's session with one inbound message.
// Returns ErrNoActiveSession when no exchange is waiting for this user,
// including replies that arrive after a timeout.
func (m *SessionManager) HandleReply(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The session may have timed out or been superseded while we waited.
	if s.session.State == domain.SessionTimedOut || !m.isCurrent(s) {
		return ErrNoActiveSession
	}

	switch s.session.State {
	case domain.SessionAwaitingTrackingNumber:
		return m.collectTrackingNumber(ctx, s, text)
	case domain.SessionAwaitingCarrier:
		return m.collectCarrier(ctx, s, text)
	default:
		return ErrNoActiveSession
	}
}

func (m *SessionManager) collectTrackingNumber(ctx context.Context, s *activeSession, text string) error {
	number := strings.TrimSpace(text)
	if number == "" {
		return nil
	}

	s.session.TrackingNumber = number
	s.session.State = domain.SessionAwaitingCarrier

	// The hint only changes the prompt; the next reply stays authoritative.
	prompt := promptCarrier
	if trackingdomain.CarrierHint(number) == "ups" {
		prompt = promptCarrierUPS
	}

	if err := m.messenger.Send(ctx, s.session.UserID, s.session.ChannelID, prompt); err != nil {
		return m.fail(ctx, s, fmt.Errorf("failed to send carrier prompt: %w", err))
	}
	return nil
}

func (m *SessionManager) collectCarrier(ctx context.Context, s *activeSession, text string) error {
	carrier := trackingdomain.NormalizeCarrier(text)
	if carrier == "" {
		return nil
	}

	if !trackingdomain.IsSupportedCarrier(carrier) {
		if err := m.messenger.Send(ctx, s.session.UserID, s.session.ChannelID, msgUnknownCarrier); err != nil {
			return m.fail(ctx, s, fmt.Errorf("failed to send carrier reprompt: %w", err))
		}
		return nil
	}

	// Leaving the waiting state: from here the timeout may no longer cancel
	// anything, so the session comes off the table before the provider calls.
	s.timer.Stop()
	m.removeIfCurrent(s)

	userID := s.session.UserID
	channelID := s.session.ChannelID
	number := s.session.TrackingNumber

	m.statuses.Register(ctx, number, carrier)

	inserted, err := m.registry.Add(ctx, userID, number, carrier)
	if err != nil {
		return m.fail(ctx, s, fmt.Errorf("failed to store registration: %w", err))
	}

	s.session.State = domain.SessionCompleted
	m.logger.Info("Registration completed",
		zap.String("user_id", userID),
		zap.String("session_id", s.session.ID),
		zap.String("carrier", carrier),
		zap.Bool("new_entry", inserted),
	)

	ack := msgRegistered
	if !inserted {
		ack = msgAlreadyRegistered
	}
	if err := m.messenger.Send(ctx, userID, channelID, ack); err != nil {
		return fmt.Errorf("failed to send registration ack: %w", err)
	}

	status, statusErr := m.statuses.GetStatus(ctx, number, carrier)
	report := FormatOutcome(number, carrier, status, statusErr)
	if err := m.messenger.Send(ctx, userID, channelID, report); err != nil {
		return fmt.Errorf("failed to send status report: %w", err)
	}
	return nil
}

// fail terminates the session with a user-visible apology. The apology send
// is best effort; the triggering error is what gets reported.
func (m *SessionManager) fail(ctx context.Context, s *activeSession, cause error) error {
	s.session.State = domain.SessionFailed
	s.timer.Stop()
	m.removeIfCurrent(s)

	m.logger.Error("Registration session failed",
		zap.String("user_id", s.session.UserID),
		zap.String("session_id", s.session.ID),
		zap.Error(cause),
	)

	if err := m.messenger.Send(ctx, s.session.UserID, s.session.ChannelID, msgFailure); err != nil {
		m.logger.Warn("Failed to deliver session failure notice", zap.Error(err))
	}
	return cause
}

// expire runs when the whole-exchange timer fires. A reply being processed at
// that moment finishes first; a completed or failed session gets no notice.
func (m *SessionManager) expire(s *activeSession) {
	s.mu.Lock()
	if s.session.State == domain.SessionCompleted || s.session.State == domain.SessionFailed {
		s.mu.Unlock()
		return
	}
	s.session.State = domain.SessionTimedOut
	s.mu.Unlock()

	if !m.removeIfCurrent(s) {
		return
	}

	m.logger.Info("Registration session timed out",
		zap.String("user_id", s.session.UserID),
		zap.String("session_id", s.session.ID),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notice := fmt.Sprintf("⏰ Timed out. Please run `%s` again.", m.retryCommand)
	if err := m.messenger.Send(ctx, s.session.UserID, s.session.ChannelID, notice); err != nil {
		m.logger.Warn("Failed to deliver timeout notice", zap.Error(err))
	}
}

// isCurrent reports whether s is still the table entry for its user.
func (m *SessionManager) isCurrent(s *activeSession) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[s.session.UserID] == s
}

// removeIfCurrent removes s from the table if it is still the entry for its
// user, so a superseding session is never torn down by its predecessor.
func (m *SessionManager) removeIfCurrent(s *activeSession) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[s.session.UserID] != s {
		return false
	}
	delete(m.sessions, s.session.UserID)
	return true
}
