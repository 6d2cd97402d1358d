/*
Package agent implements the heartbeat client that runs on tracked
machines.

PURPOSE:
  One heartbeat = one minute of presence. The agent's whole job is to
  POST that minute to the tracker while the machine is on and unlocked.
  It is intentionally dumb: no local state, no buffering, no retries -
  a missed minute is simply a minute not worked.

DEPLOYMENT MODEL:
  Designed for an OS scheduler (cron, systemd timer, Task Scheduler)
  invoking one Send per minute. Run gives hosts without a scheduler a
  built-in ticker loop instead.

WIRE CONTRACT:
  POST {server}/api/heartbeat
  Authorization: Bearer {token}
  User-Agent: HeartbeatAgent/{device}
  {"device_id": "...", "timezone": "..."}

SEE ALSO:
  - cmd/agent/main.go: CLI wrapping this package
  - api/handlers.go: Server side of the contract
*/
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/farajallah/heartbeat/config"
)

const (
	sendTimeout = 10 * time.Second
	testTimeout = 5 * time.Second
)

// Agent sends heartbeats to a tracker server.
type Agent struct {
	cfg    config.AgentConfig
	client *http.Client

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// New creates an agent from the given configuration.
func New(cfg config.AgentConfig) (*Agent, error) {
	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("bearer token is required")
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	return &Agent{
		cfg:    cfg,
		client: &http.Client{Timeout: sendTimeout},
		stop:   make(chan bool),
	}, nil
}

// Send posts a single heartbeat. A non-200 response is an error; the
// caller decides whether that is fatal.
func (a *Agent) Send(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"device_id": a.cfg.DeviceID,
		"timezone":  a.cfg.Timezone,
	})
	if err != nil {
		return fmt.Errorf("encode heartbeat: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.ServerURL+"/api/heartbeat", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.BearerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "HeartbeatAgent/"+a.cfg.DeviceID)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Test checks whether the server is reachable via its health endpoint.
func (a *Agent) Test(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.ServerURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "HeartbeatAgent/"+a.cfg.DeviceID)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}

// Run starts the built-in scheduler loop, sending one heartbeat per
// interval until Stop is called. For hosts without cron.
func (a *Agent) Run(interval time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.ticker = time.NewTicker(interval)
	a.wg.Add(1)

	go a.run()

	log.Printf("[Agent] Started with interval: %v (device=%s)", interval, a.cfg.DeviceID)
}

// Stop stops the scheduler loop and waits for it to drain.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ticker != nil {
		a.ticker.Stop()
		close(a.stop)
		a.wg.Wait()
		log.Println("[Agent] Stopped")
	}
}

func (a *Agent) run() {
	defer a.wg.Done()

	// Send immediately on start
	a.sendLogged()

	for {
		select {
		case <-a.ticker.C:
			a.sendLogged()
		case <-a.stop:
			return
		}
	}
}

func (a *Agent) sendLogged() {
	if err := a.Send(context.Background()); err != nil {
		log.Printf("[Agent] Heartbeat failed: %v", err)
		return
	}
	log.Println("[Agent] Heartbeat sent")
}
