package domain

import "strings"

// TrackedShipment is one registered tracking entry for a user.
type TrackedShipment struct {
	// TrackingNumber is the provider-assigned identifier, kept exactly as given.
	TrackingNumber string `json:"trackingNumber"`
	// Carrier is the normalized lowercase carrier code.
	Carrier string `json:"carrier"`
}

// SupportedCarriers is the closed set of carrier codes the bot accepts.
var SupportedCarriers = []string{"ups", "fedex", "usps", "dhl"}

// IsSupportedCarrier reports whether the given lowercase code is accepted.
func IsSupportedCarrier(code string) bool {
	for _, c := range SupportedCarriers {
		if c == code {
			return true
		}
	}
	return false
}

// NormalizeCarrier lowercases and trims a user-supplied carrier string.
func NormalizeCarrier(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// CarrierHint suggests a carrier from the tracking number format.
// The hint only changes the prompt text; the user's reply stays authoritative.
func CarrierHint(trackingNumber string) string {
	if strings.HasPrefix(trackingNumber, "1Z") {
		return "ups"
	}
	return ""
}
