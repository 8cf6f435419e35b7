package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"brandcast/pkg/config"
	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"
)

// State is a step of the two-phase container/publish protocol.
type State string

const (
	StateIdle               State = "idle"
	StateContainerRequested State = "container_requested"
	StateContainerReady     State = "container_ready"
	StatePublishRequested   State = "publish_requested"
	StatePublished          State = "published"
	StateFailed             State = "failed"
)

// Container status values reported by the Graph API status_code field.
const (
	containerFinished  = "FINISHED"
	containerPublished = "PUBLISHED"
	containerError     = "ERROR"
	containerExpired   = "EXPIRED"
)

// Instagram publishes through a media container: create it, wait for the
// upstream processing, then publish it.
type Instagram struct {
	baseURL      string
	accessToken  string
	businessID   string
	minDelay     time.Duration
	maxWait      time.Duration
	pollInterval time.Duration
	pollStatus   bool
	client       *http.Client
	logger       *logger.Logger
}

// minProcessingFloor is the shortest wait between container creation and
// publish that upstream processing has been observed to need.
var minProcessingFloor = 3 * time.Second

func NewInstagram(cfg *config.Config, client *http.Client, log *logger.Logger) *Instagram {
	minDelay := cfg.IGMinProcessingDelay
	if minDelay < minProcessingFloor {
		log.Warn("[INSTAGRAM] Processing delay %s is below the %s floor, using the floor", minDelay, minProcessingFloor)
		minDelay = minProcessingFloor
	}
	return &Instagram{
		baseURL:      fmt.Sprintf("%s/%s", strings.TrimRight(cfg.InstagramGraphURL, "/"), cfg.GraphAPIVersion),
		accessToken:  cfg.InstagramAccessToken,
		businessID:   cfg.InstagramBusinessID,
		minDelay:     minDelay,
		maxWait:      cfg.IGMaxProcessingWait,
		pollInterval: cfg.IGPollInterval,
		pollStatus:   cfg.IGPollStatus,
		client:       newHTTPClient(client, cfg.HTTPTimeout),
		logger:       log,
	}
}

func (c *Instagram) Platform() entity.Platform { return entity.PlatformInstagram }

// RequiresHostedURL is true: Instagram fetches the image server-side.
func (c *Instagram) RequiresHostedURL() bool { return true }

// containerRun tracks one pass through the protocol.
type containerRun struct {
	result Result
}

func (r *containerRun) enter(s State) {
	r.result.State = s
}

func (r *containerRun) fail(err error) (Result, error) {
	r.result.FailedAt = r.result.State
	r.result.State = StateFailed
	return r.result, err
}

func (c *Instagram) Publish(ctx context.Context, media Media, caption string) (Result, error) {
	run := &containerRun{result: Result{State: StateIdle}}

	if media.HostedURL == "" {
		return run.fail(fmt.Errorf("%w: instagram requires a hosted image url", entity.ErrContainer))
	}

	run.enter(StateContainerRequested)
	c.logger.Info("[INSTAGRAM] Creating media container for business_id=%s", c.businessID)
	containerID, err := c.createContainer(ctx, media.HostedURL, caption)
	if err != nil {
		c.logger.Error("[INSTAGRAM] Container creation failed: %v", err)
		return run.fail(fmt.Errorf("%w: %v", entity.ErrContainer, err))
	}
	run.result.ContainerID = containerID
	run.enter(StateContainerReady)
	c.logger.Info("[INSTAGRAM] Container created: container_id=%s", containerID)

	if err := c.awaitProcessing(ctx, containerID); err != nil {
		c.logger.Error("[INSTAGRAM] Container %s not publishable: %v", containerID, err)
		return run.fail(err)
	}

	run.enter(StatePublishRequested)
	postID, err := c.publishContainer(ctx, containerID)
	if err != nil {
		c.logger.Error("[INSTAGRAM] Publish failed for container_id=%s: %v", containerID, err)
		return run.fail(fmt.Errorf("%w: %v", entity.ErrPublish, err))
	}
	run.result.PostID = postID
	run.enter(StatePublished)
	c.logger.Info("[INSTAGRAM] Post published: post_id=%s container_id=%s", postID, containerID)

	return run.result, nil
}

func (c *Instagram) createContainer(ctx context.Context, imageURL, caption string) (string, error) {
	payload := map[string]string{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": c.accessToken,
	}
	data, err := c.postJSON(ctx, fmt.Sprintf("%s/%s/media", c.baseURL, c.businessID), payload)
	if err != nil {
		return "", err
	}
	if data.ID == "" {
		return "", fmt.Errorf("response carried no container id")
	}
	return data.ID, nil
}

// awaitProcessing always lets the minimum delay elapse, then, if enabled, polls
// the container status until it is FINISHED or the processing deadline passes.
// Reaching the deadline is not fatal: the publish call decides.
func (c *Instagram) awaitProcessing(ctx context.Context, containerID string) error {
	start := time.Now()
	c.logger.Info("[INSTAGRAM] Waiting %s for media processing of container_id=%s", c.minDelay, containerID)
	if err := sleepCtx(ctx, c.minDelay); err != nil {
		return fmt.Errorf("%w: processing wait interrupted: %v", entity.ErrPublish, err)
	}
	if !c.pollStatus {
		return nil
	}

	deadline := start.Add(c.maxWait)
	for {
		status, err := c.containerStatus(ctx, containerID)
		switch {
		case err != nil:
			c.logger.Warn("[INSTAGRAM] Status check failed for container_id=%s: %v", containerID, err)
		case status == containerFinished || status == containerPublished:
			return nil
		case status == containerError || status == containerExpired:
			return fmt.Errorf("%w: container %s reported status %s", entity.ErrContainer, containerID, status)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.logger.Warn("[INSTAGRAM] Container %s still %s after %s, publishing anyway", containerID, statusOr(status, "unknown"), c.maxWait)
			return nil
		}
		wait := c.pollInterval
		if wait <= 0 || wait > remaining {
			wait = remaining
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return fmt.Errorf("%w: processing wait interrupted: %v", entity.ErrPublish, err)
		}
	}
}

func (c *Instagram) containerStatus(ctx context.Context, containerID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, containerID), nil)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("fields", "status_code")
	q.Set("access_token", c.accessToken)
	req.URL.RawQuery = q.Encode()

	data, err := doGraph(c.client, req)
	if err != nil {
		return "", err
	}
	return data.StatusCode, nil
}

func (c *Instagram) publishContainer(ctx context.Context, containerID string) (string, error) {
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": c.accessToken,
	}
	data, err := c.postJSON(ctx, fmt.Sprintf("%s/%s/media_publish", c.baseURL, c.businessID), payload)
	if err != nil {
		return "", err
	}
	if data.ID == "" {
		return "", fmt.Errorf("response carried no post id")
	}
	return data.ID, nil
}

func (c *Instagram) postJSON(ctx context.Context, url string, payload interface{}) (*graphResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return doGraph(c.client, req)
}

func statusOr(status, fallback string) string {
	if status == "" {
		return fallback
	}
	return status
}
