package syncqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stocktake-manager/core/reconcile"
)

// HTTPSubmitter delivers queued work to the stocktake server over HTTP.
type HTTPSubmitter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSubmitter creates a submitter from the queue configuration.
func NewHTTPSubmitter(cfg Config) *HTTPSubmitter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSubmitter{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		apiKey:  cfg.ApiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type countsPayload struct {
	Events []reconcile.CountEvent `json:"events"`
}

type countsAck struct {
	Accepted []string `json:"accepted"`
	Rejected []struct {
		SyncID string `json:"sync_id"`
		Reason string `json:"reason"`
	} `json:"rejected"`
}

// SubmitCounts implements Submitter.
func (s *HTTPSubmitter) SubmitCounts(ctx context.Context, stocktakeID uint, events []reconcile.CountEvent) ([]string, error) {
	body, err := json.Marshal(countsPayload{Events: events})
	if err != nil {
		return nil, fmt.Errorf("failed to encode count batch: %w", err)
	}

	url := fmt.Sprintf("%s/stocktakes/%d/counts", s.baseURL, stocktakeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server rejected count batch: %s", readError(resp))
	}

	var ack countsAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("failed to decode server acknowledgement: %w", err)
	}
	return ack.Accepted, nil
}

// DeleteCount implements Submitter.
func (s *HTTPSubmitter) DeleteCount(ctx context.Context, stocktakeID uint, syncID string) error {
	url := fmt.Sprintf("%s/stocktakes/%d/counts/%s", s.baseURL, stocktakeID, syncID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("server rejected deletion of %s: %s", syncID, readError(resp))
	}
	return nil
}

func (s *HTTPSubmitter) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}
}

func readError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil || len(data) == 0 {
		return resp.Status
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return fmt.Sprintf("%s (%s)", resp.Status, payload.Error)
	}
	return resp.Status
}
