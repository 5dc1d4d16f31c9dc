package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"icalsync/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		summary string
		want    model.SourceTag
	}{
		{"Reservation via Airbnb", model.SourceAirbnb},
		{"AIRBNB RESERVATION", model.SourceAirbnb},
		{"Booking.com guest stay", model.SourceBookingCom},
		{"booked via BOOKING.COM", model.SourceBookingCom},
		{"Direct walk-in", model.SourceHostify},
		{"", model.SourceHostify},
		{"External Guest", model.SourceHostify},
		// First rule wins when tokens co-occur.
		{"airbnb guest relocated from booking.com", model.SourceAirbnb},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.summary), "summary %q", tt.summary)
	}
}
