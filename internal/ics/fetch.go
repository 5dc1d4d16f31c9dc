package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "icalsync/internal/log"
)

// Source identifies a single feed to fetch.
type Source struct {
	// ID is the owning property's identifier, used for logging and dedup context.
	ID string
	// URL is the ICS endpoint.
	URL string
}

// Fetcher retrieves ICS feeds over plain HTTP GET. A non-success status or
// transport error is reported to the caller, which skips the property.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests are bounded by timeout, so one
// unresponsive feed cannot stall a whole sync run.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the feed body for a single source.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.New("source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}

	appLog.Debug("feed fetch start", "property_id", src.ID, "url", redactURL(src.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	appLog.Debug("feed fetch done", "property_id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
	return body, nil
}

// redactURL hides the path and query of a feed URL for logging. Feed URLs
// routinely embed per-property secrets in the path or query string.
//
//	https://example.com/calendar/ical/123.ics?s=secret
//	-> https://example.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "ics://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
