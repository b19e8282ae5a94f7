package domain

import "time"

// SessionState tracks where a registration exchange currently stands.
type SessionState string

const (
	// SessionAwaitingTrackingNumber means the user was asked for a tracking number.
	SessionAwaitingTrackingNumber SessionState = "AWAITING_TRACKING_NUMBER"
	// SessionAwaitingCarrier means the user was asked for a carrier.
	SessionAwaitingCarrier SessionState = "AWAITING_CARRIER"
	// SessionCompleted means the registration committed.
	SessionCompleted SessionState = "COMPLETED"
	// SessionTimedOut means the exchange exceeded its inactivity window.
	SessionTimedOut SessionState = "TIMED_OUT"
	// SessionFailed means reply processing hit an unrecoverable error.
	SessionFailed SessionState = "FAILED"
)

// Session is one in-flight registration exchange for a user.
// It lives in memory only and is destroyed on completion, timeout,
// supersession or failure.
type Session struct {
	// ID identifies this session in logs.
	ID string
	// UserID is the owning user; only their messages advance the session.
	UserID string
	// ChannelID is the private channel the exchange happens in.
	ChannelID string
	// State is the current position in the exchange.
	State SessionState
	// TrackingNumber is collected in the first step, verbatim as given.
	TrackingNumber string
	// StartedAt anchors the whole-exchange timeout.
	StartedAt time.Time
}
