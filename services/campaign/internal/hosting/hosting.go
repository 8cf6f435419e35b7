// Package hosting makes rendered assets reachable at a public URL that the
// social platforms can fetch server-side.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"brandcast/services/campaign/internal/entity"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// Publisher uploads an asset and returns where it can be fetched from.
type Publisher interface {
	Publish(ctx context.Context, asset *entity.RenderedAsset) (*entity.HostedAsset, error)
	Provider() string
	Configured() bool
}

// Unconfigured is installed when no hosting credentials are present so the
// orchestrator still receives a typed failure instead of a nil publisher.
type Unconfigured struct {
	Reason string
}

func (u Unconfigured) Publish(context.Context, *entity.RenderedAsset) (*entity.HostedAsset, error) {
	reason := u.Reason
	if reason == "" {
		reason = "hosting credentials are not configured"
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrConfiguration, reason)
}

func (Unconfigured) Provider() string { return "none" }

func (Unconfigured) Configured() bool { return false }

// objectKey names uploads campaigns/<yyyy>/<mm>/<uuid><ext>.
func objectKey(now time.Time, mimeType string) string {
	ext := ".png"
	if mimeType == "image/jpeg" {
		ext = ".jpg"
	}
	return fmt.Sprintf("campaigns/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New().String(), ext)
}

// validatePublicURL rejects anything a platform server could not fetch:
// data URIs, relative paths, loopback and unspecified hosts.
func validatePublicURL(raw string) error {
	if raw == "" {
		return errors.New("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("unparseable url %q: %v", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("url %q is not http(s)", truncate(raw, 64))
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("url %q points at localhost", raw)
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsUnspecified()) {
		return fmt.Errorf("url %q points at a local address", raw)
	}
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
