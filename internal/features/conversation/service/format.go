package service

import (
	"errors"
	"fmt"

	trackingdomain "tracking-bot/internal/features/tracking/domain"
	trackingports "tracking-bot/internal/features/tracking/ports"
)

// FormatStatus renders the canonical status record as the user-facing
// tracking update block.
func FormatStatus(trackingNumber, carrier string, status trackingdomain.TrackingStatus) string {
	return fmt.Sprintf(`📦 **Tracking Update**
**Carrier:** %s
**Tracking #:** %s
**Status:** %s
**Location:** %s
**Updated:** %s`,
		carrier, trackingNumber, status.Status, status.Location, status.UpdatedAt)
}

// FormatOutcome renders the result of a status lookup, distinguishing the
// terminal no-data outcome from transient fetch failures.
func FormatOutcome(trackingNumber, carrier string, status *trackingdomain.TrackingStatus, err error) string {
	switch {
	case errors.Is(err, trackingports.ErrNoTrackingData):
		return fmt.Sprintf("❌ No tracking data found for %s", trackingNumber)
	case err != nil:
		return fmt.Sprintf("⚠️ Failed to fetch tracking info for %s", trackingNumber)
	default:
		return FormatStatus(trackingNumber, carrier, *status)
	}
}
