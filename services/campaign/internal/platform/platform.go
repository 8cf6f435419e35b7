// Package platform holds the social network clients. Each client publishes a
// hosted (or raw) image with a caption and reports how far its protocol got.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"brandcast/services/campaign/internal/entity"
)

const maxResponseBytes = 1 << 20

// Media is what a client may post: a public URL, the raw bytes, or both.
type Media struct {
	HostedURL string
	Asset     *entity.RenderedAsset
}

// Result is filled as far as the protocol progressed, on error too.
type Result struct {
	ContainerID string
	PostID      string
	State       State
	FailedAt    State
}

type Client interface {
	Platform() entity.Platform
	// RequiresHostedURL reports whether Publish needs Media.HostedURL.
	RequiresHostedURL() bool
	Publish(ctx context.Context, media Media, caption string) (Result, error)
}

type graphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode"`
	FBTraceID string `json:"fbtrace_id"`
}

func (e *graphError) String() string {
	s := fmt.Sprintf("%s (type=%s code=%d", e.Message, e.Type, e.Code)
	if e.Subcode != 0 {
		s += fmt.Sprintf(" subcode=%d", e.Subcode)
	}
	if e.FBTraceID != "" {
		s += " fbtrace_id=" + e.FBTraceID
	}
	return s + ")"
}

type graphResponse struct {
	ID         string      `json:"id"`
	PostID     string      `json:"post_id"`
	StatusCode string      `json:"status_code"`
	Status     string      `json:"status"`
	Error      *graphError `json:"error"`
}

// doGraph sends req and decodes a Graph API reply. Non-2xx statuses and error
// bodies are returned as plain errors; callers attach the failure class.
func doGraph(client *http.Client, req *http.Request) (*graphResponse, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var data graphResponse
	decodeErr := json.Unmarshal(body, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && data.Error != nil {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, data.Error)
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, snippet(body))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("invalid response body: %w", decodeErr)
	}
	if data.Error != nil {
		return nil, fmt.Errorf("graph error: %s", data.Error)
	}
	return &data, nil
}

func newHTTPClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// sleepCtx waits for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func snippet(body []byte) string {
	const n = 256
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
