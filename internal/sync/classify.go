package sync

import (
	"strings"

	"icalsync/internal/model"
)

// classifyRule maps a summary substring to a source tag.
type classifyRule struct {
	token string
	tag   model.SourceTag
}

// Rules are checked in order and the first match wins; "booking.com" text
// can co-occur with other channel tokens, so ordering is part of the
// contract, not an accident.
var classifyRules = []classifyRule{
	{token: "airbnb", tag: model.SourceAirbnb},
	{token: "booking.com", tag: model.SourceBookingCom},
}

// Classify maps a free-text event summary to a booking channel,
// case-insensitively. Unrecognized summaries fall through to hostify,
// meaning "direct or unknown channel".
func Classify(summary string) model.SourceTag {
	s := strings.ToLower(summary)
	for _, r := range classifyRules {
		if strings.Contains(s, r.token) {
			return r.tag
		}
	}
	return model.SourceHostify
}
