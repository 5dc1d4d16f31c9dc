package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendar(events ...string) []byte {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//icalsync tests//EN"}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParseICSExtractsEventsInOrder(t *testing.T) {
	body := calendar(
		strings.Join([]string{
			"BEGIN:VEVENT",
			"UID:first@feed",
			"SUMMARY:Reservation via Airbnb",
			"DTSTAMP:20240101T000000Z",
			"DTSTART:20240110T000000Z",
			"DTEND:20240113T000000Z",
			"END:VEVENT",
		}, "\r\n"),
		strings.Join([]string{
			"BEGIN:VEVENT",
			"UID:second@feed",
			"DTSTAMP:20240101T000000Z",
			"DTSTART:20240201T000000Z",
			"DTEND:20240203T000000Z",
			"END:VEVENT",
		}, "\r\n"),
	)

	events, err := ParseICS(Source{ID: "p1", URL: "https://example.com/feed.ics"}, body)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "first@feed", events[0].UID)
	assert.Equal(t, "Reservation via Airbnb", events[0].Summary)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), events[0].Start.UTC())
	assert.Equal(t, time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), events[0].End.UTC())

	assert.Equal(t, "second@feed", events[1].UID)
	assert.Empty(t, events[1].Summary)
}

func TestParseICSKeepsEventWithoutUID(t *testing.T) {
	// A uid-less event still parses; rejecting it is the normalizer's call.
	body := calendar(strings.Join([]string{
		"BEGIN:VEVENT",
		"SUMMARY:anonymous block",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240110T000000Z",
		"DTEND:20240111T000000Z",
		"END:VEVENT",
	}, "\r\n"))

	events, err := ParseICS(Source{ID: "p1"}, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].UID)
}

func TestParseICSAllDayDetection(t *testing.T) {
	body := calendar(strings.Join([]string{
		"BEGIN:VEVENT",
		"UID:allday@feed",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20240110",
		"DTEND;VALUE=DATE:20240113",
		"END:VEVENT",
	}, "\r\n"))

	events, err := ParseICS(Source{ID: "p1"}, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].AllDay)
}

func TestParseICSCapturesRRuleAndExdates(t *testing.T) {
	body := calendar(strings.Join([]string{
		"BEGIN:VEVENT",
		"UID:weekly@feed",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240110T000000Z",
		"DTEND:20240112T000000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE:20240117T000000Z",
		"END:VEVENT",
	}, "\r\n"))

	events, err := ParseICS(Source{ID: "p1"}, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", events[0].RawRRule)
	require.Len(t, events[0].ExDates, 1)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), events[0].ExDates[0].UTC())
}

func TestParseICSMalformedBody(t *testing.T) {
	_, err := ParseICS(Source{ID: "p1"}, []byte("definitely not a calendar"))
	assert.Error(t, err)
}

func TestParseICSEmptyBody(t *testing.T) {
	_, err := ParseICS(Source{ID: "p1"}, nil)
	assert.Error(t, err)
}
