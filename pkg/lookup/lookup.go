// Package lookup fetches read-mostly citizen data (weather, mandi prices,
// schemes, hospital directories) used to enrich replies. Every fetch has a
// static fallback so enrichment never fails a turn.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gramseva/vaani/pkg/ai/intent"
)

// Config holds the upstream endpoints. An empty URL disables the remote
// fetch for that domain and serves the static fallback directly.
type Config struct {
	WeatherURL   string
	MandiURL     string
	SchemesURL   string
	HospitalsURL string
	Timeout      time.Duration
}

// Static fallbacks served when an upstream is unavailable or unconfigured.
var fallbacks = map[string]string{
	"weather":   "clear skies, around 31°C, no rain expected",
	"prices":    "onion ₹1450/q, wheat ₹2275/q, soybean ₹4600/q",
	"schemes":   "PM-Kisan, Ayushman Bharat, PM Fasal Bima Yojana",
	"hospitals": "District Hospital (24x7), Primary Health Centre, Community Health Centre",
	"advisory":  "monitor soil moisture and delay irrigation until the current spell passes",
}

// Client resolves reply-context data per intent.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a lookup client. A zero timeout defaults to 3s.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Enrich returns the context entries the response templates expect for the
// given intent. The session context supplies hints such as "location".
// Enrich never returns an error; upstream failures degrade to fallbacks.
func (c *Client) Enrich(ctx context.Context, label string, sessionCtx map[string]any) map[string]any {
	location, _ := sessionCtx["location"].(string)

	switch label {
	case intent.IntentWeather:
		return map[string]any{"weather": c.fetch(ctx, c.cfg.WeatherURL, location, "weather")}
	case intent.IntentMarketPrice:
		return map[string]any{"prices": c.fetch(ctx, c.cfg.MandiURL, location, "prices")}
	case intent.IntentSchemeInquiry:
		return map[string]any{"schemes": c.fetch(ctx, c.cfg.SchemesURL, location, "schemes")}
	case intent.IntentHospital:
		return map[string]any{"hospitals": c.fetch(ctx, c.cfg.HospitalsURL, location, "hospitals")}
	case intent.IntentCropAdvisory:
		return map[string]any{"advisory": fallbacks["advisory"]}
	default:
		return nil
	}
}

// fetch gets a one-line summary from an upstream. The endpoint contract is a
// JSON object {"summary": "..."}.
func (c *Client) fetch(ctx context.Context, endpoint, location, kind string) string {
	if endpoint == "" {
		return fallbacks[kind]
	}

	summary, err := c.fetchSummary(ctx, endpoint, location)
	if err != nil {
		c.logger.Warn("lookup fetch failed, serving fallback",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return fallbacks[kind]
	}
	return summary
}

func (c *Client) fetchSummary(ctx context.Context, endpoint, location string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid lookup URL: %w", err)
	}
	if location != "" {
		q := u.Query()
		q.Set("location", location)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var body struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode lookup response: %w", err)
	}
	if body.Summary == "" {
		return "", fmt.Errorf("lookup response missing summary")
	}
	return body.Summary, nil
}
