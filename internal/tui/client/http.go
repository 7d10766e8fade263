package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrHostControlled is returned by timer actions when the daemon drives an
// external timer that cannot be controlled remotely.
var ErrHostControlled = errors.New("timer is controlled by an external host")

// HTTPClient makes REST calls to the daemon.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:8080").
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetStatus fetches /api/status.
func (c *HTTPClient) GetStatus() (*Status, error) {
	var s Status
	if err := c.get("/api/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSettings fetches /api/settings.
func (c *HTTPClient) GetSettings() ([]Setting, error) {
	var out []Setting
	if err := c.get("/api/settings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TimerAction sends POST /api/timer/{action}. Valid actions are start,
// split, reset, pause and resume.
func (c *HTTPClient) TimerAction(action string) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/timer/"+action, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusConflict {
		return ErrHostControlled
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("timer %s failed (%d): %s", action, resp.StatusCode, string(body))
	}
	return nil
}

func (c *HTTPClient) get(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("X-Airsplit-Token", c.token)
	}
}
