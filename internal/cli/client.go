package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"playstock/internal/api"
	"playstock/internal/race"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) RaceState(ctx context.Context) (api.RaceStateView, error) {
	var out api.RaceStateView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/race", "", &out)
	return out, err
}

type TelemetryResponse struct {
	DriverID string                 `json:"driverId"`
	Lap      int                    `json:"lap"`
	Samples  []race.TelemetrySample `json:"samples"`
}

func (c *Client) Telemetry(ctx context.Context, driverID string) (TelemetryResponse, error) {
	var out TelemetryResponse
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/race/telemetry/"+url.PathEscape(driverID), "", &out)
	return out, err
}

func (c *Client) Drivers(ctx context.Context) ([]race.Driver, error) {
	var out struct {
		Drivers []race.Driver `json:"drivers"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/drivers", "", &out)
	return out.Drivers, err
}

func (c *Client) Driver(ctx context.Context, id string) (race.Driver, error) {
	var out race.Driver
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/drivers/"+url.PathEscape(id), "", &out)
	return out, err
}

func (c *Client) Schedule(ctx context.Context) ([]api.ScheduledRaceView, error) {
	var out struct {
		Races []api.ScheduledRaceView `json:"races"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/schedule", "", &out)
	return out.Races, err
}

type NextRaceResponse struct {
	Race      api.ScheduledRaceView `json:"race"`
	Countdown string                `json:"countdown"`
}

func (c *Client) NextRace(ctx context.Context) (NextRaceResponse, error) {
	var out NextRaceResponse
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/schedule/next", "", &out)
	return out, err
}

func (c *Client) ForceLive(ctx context.Context, raceID, adminToken string) (api.ScheduledRaceView, error) {
	var out api.ScheduledRaceView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/admin/schedule/"+url.PathEscape(raceID)+"/live", adminToken, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path, adminToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if adminToken != "" {
		req.Header.Set("X-Admin-Token", adminToken)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
