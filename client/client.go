// Package client keeps a local copy of the shared document and applies
// mutations optimistically: the change is rendered immediately using the same
// engine code the server runs, the operation is sent, and on failure the
// local state snaps back to the last confirmed server document. The server is
// always the source of truth; the optimistic copy only bridges the round trip.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/engine"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

// DefaultPollInterval matches the staleness bound the server assumes for
// unlocked reads.
const DefaultPollInterval = 5 * time.Second

// State of the one pending action, per the Idle → Optimistic →
// {Confirmed | RolledBack} machine.
type State int

const (
	StateIdle State = iota
	StateOptimistic
	StateConfirmed
	StateRolledBack
)

var (
	ErrMutationInFlight = errors.New("client: a mutation is already in flight")
	ErrNotLoaded        = errors.New("client: no document loaded yet")
)

type serverError struct {
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	hc      *http.Client

	mu         sync.Mutex
	confirmed  *models.AppData
	optimistic *models.AppData // non-nil only while a mutation is in flight
	state      State
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Refresh revalidates against the server. While a mutation is in flight the
// fetched document is discarded so the optimistic state is not clobbered.
func (c *Client) Refresh(ctx context.Context) error {
	data, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.optimistic == nil {
		c.confirmed = data
	}
	return nil
}

// Data returns a copy of the rendered state: the optimistic document while a
// mutation is pending, the last confirmed server document otherwise.
func (c *Client) Data() *models.AppData {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.optimistic != nil {
		return c.optimistic.Clone()
	}
	if c.confirmed == nil {
		return nil
	}
	return c.confirmed.Clone()
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartPolling revalidates on interval until ctx is cancelled.
func (c *Client) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = c.Refresh(ctx)
			}
		}
	}()
}

// Mutate applies op optimistically, submits it, and reconciles. Only one
// mutation may be in flight at a time; callers queue their own actions.
func (c *Client) Mutate(ctx context.Context, op engine.Operation) (*models.AppData, error) {
	c.mu.Lock()
	if c.optimistic != nil {
		c.mu.Unlock()
		return nil, ErrMutationInFlight
	}
	if c.confirmed == nil {
		c.mu.Unlock()
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.confirmed == nil {
			c.mu.Unlock()
			return nil, ErrNotLoaded
		}
	}

	next := c.confirmed.Clone()
	if err := engine.Apply(next, op); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.optimistic = next
	c.state = StateOptimistic
	c.mu.Unlock()

	serverDoc, err := c.post(ctx, op)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.optimistic = nil
	if err != nil {
		// Roll back: rendered state falls back to the confirmed document.
		c.state = StateRolledBack
		return nil, err
	}
	c.confirmed = serverDoc
	c.state = StateConfirmed
	return serverDoc.Clone(), nil
}

func (c *Client) fetch(ctx context.Context) (*models.AppData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/data", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()
	return decodeDocument(resp)
}

func (c *Client) post(ctx context.Context, op engine.Operation) (*models.AppData, error) {
	body, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/data", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit operation: %w", err)
	}
	defer resp.Body.Close()
	return decodeDocument(resp)
}

func decodeDocument(resp *http.Response) (*models.AppData, error) {
	if resp.StatusCode != http.StatusOK {
		var e serverError
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Message != "" {
			return nil, fmt.Errorf("server: %s", e.Message)
		}
		return nil, fmt.Errorf("server: unexpected status %d", resp.StatusCode)
	}
	var data models.AppData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &data, nil
}
