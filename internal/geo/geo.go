package geo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Provider supplies a one-shot approximate position. Absence of data
// is not an error: forms simply leave coordinates at [0, 0].
type Provider interface {
	// Locate returns (longitude, latitude, true) when a position is
	// available and ok=false otherwise.
	Locate(ctx context.Context) (lng, lat float64, ok bool)
}

// HTTPProvider looks the position up from an IP-geolocation endpoint
// returning {"lon": ..., "lat": ...}. Every failure mode reads as "no
// data".
type HTTPProvider struct {
	// Endpoint is the lookup URL. Empty disables the provider.
	Endpoint string

	// HTTPClient defaults to a client with a short timeout.
	HTTPClient *http.Client
}

// Locate implements Provider.
func (p *HTTPProvider) Locate(ctx context.Context) (float64, float64, bool) {
	if p.Endpoint == "" {
		return 0, 0, false
	}

	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint, nil)
	if err != nil {
		return 0, 0, false
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, false
	}

	var pos struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	}
	if err := json.Unmarshal(body, &pos); err != nil {
		return 0, 0, false
	}
	if pos.Lon == 0 && pos.Lat == 0 {
		return 0, 0, false
	}

	return pos.Lon, pos.Lat, true
}

// None is a Provider that never has data.
type None struct{}

// Locate implements Provider.
func (None) Locate(context.Context) (float64, float64, bool) { return 0, 0, false }
