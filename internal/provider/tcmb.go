package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

var _ RatesFeed = (*TCMBFeed)(nil)

// DefaultTCMBURL is the central bank's "today" rates document.
const DefaultTCMBURL = "https://www.tcmb.gov.tr/kurlar/today.xml"

// TCMBFeed fetches the daily rates published by the Central Bank of the Republic of Turkey.
type TCMBFeed struct {
	url    string
	client *http.Client
	loc    *time.Location
	now    func() time.Time
}

// NewTCMBFeed creates a new TCMBFeed. loc is the zone used to date a document without a header date.
func NewTCMBFeed(url string, timeoutSec int, loc *time.Location) *TCMBFeed {
	if url == "" {
		url = DefaultTCMBURL
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TCMBFeed{
		url:    url,
		client: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		loc:    loc,
		now:    time.Now,
	}
}

// Fetch downloads and parses the feed. The mode is ignored; the live feed never caches.
func (p *TCMBFeed) Fetch(ctx context.Context, _ FetchMode) (*FeedResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("tcmb request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tcmb request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tcmb returned status %d: %s", resp.StatusCode, string(body))
	}

	now := p.now()
	rates, err := ParseTCMB(resp.Body, now.In(p.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tcmb response: %w", err)
	}

	return &FeedResult{
		Rates:     rates,
		Source:    SourceTCMB,
		FetchedAt: now.UTC(),
	}, nil
}
