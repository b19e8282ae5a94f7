package domain

// UnknownValue is the terminal fallback for any status field with no source.
const UnknownValue = "Unknown"

// TrackingStatus is the canonical status record derived from a provider item,
// regardless of which provider fields were actually populated.
type TrackingStatus struct {
	// Status is the current shipment state description.
	Status string `json:"status"`
	// Location is the last known shipment location.
	Location string `json:"location"`
	// UpdatedAt is the provider-reported time of the last update.
	UpdatedAt string `json:"updated_at"`
}

// RawItem is the loosely-typed shipment record returned by the provider.
// Which sub-fields are populated varies by carrier and tracking stage.
type RawItem struct {
	TrackingNumber string         `json:"tracking_number"`
	CarrierCode    string         `json:"carrier_code"`
	Status         string         `json:"status"`
	Substatus      string         `json:"substatus"`
	LastUpdateTime string         `json:"last_update_time"`
	LastEvent      *RawEvent      `json:"lastEvent"`
	OriginInfo     *RawOriginInfo `json:"origin_info"`
}

// RawEvent is the provider's latest-event record.
type RawEvent struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	City     string `json:"city"`
}

// RawOriginInfo wraps the origin trace entries.
type RawOriginInfo struct {
	TrackInfo []RawCheckpoint `json:"trackinfo"`
}

// RawCheckpoint is one origin trace entry. Field casing follows the wire
// format, which mixes conventions per carrier.
type RawCheckpoint struct {
	Date              string `json:"Date"`
	StatusDescription string `json:"StatusDescription"`
	Details           string `json:"Details"`
	Location          string `json:"Location"`
	City              string `json:"city"`
}

// Normalize derives the canonical status record from a raw provider item.
// Each field takes the first non-empty candidate in priority order and falls
// back to UnknownValue when no candidate matches.
func Normalize(item RawItem) TrackingStatus {
	var last RawEvent
	if item.LastEvent != nil {
		last = *item.LastEvent
	}

	var origin RawCheckpoint
	if item.OriginInfo != nil && len(item.OriginInfo.TrackInfo) > 0 {
		origin = item.OriginInfo.TrackInfo[0]
	}

	return TrackingStatus{
		Status: firstNonEmpty(
			item.Status,
			item.Substatus,
			last.Status,
			origin.StatusDescription,
		),
		Location: firstNonEmpty(
			last.Location,
			last.City,
			origin.Location,
			origin.City,
			origin.Details,
			origin.StatusDescription,
		),
		UpdatedAt: firstNonEmpty(
			item.LastUpdateTime,
			origin.Date,
		),
	}
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return UnknownValue
}
