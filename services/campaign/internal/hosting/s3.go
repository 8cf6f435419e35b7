package hosting

import (
	"context"
	"fmt"
	"time"

	"brandcast/pkg/config"
	"brandcast/services/campaign/internal/entity"
)

type objectUploader interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3Publisher hosts assets in an S3 (or MinIO) bucket.
type S3Publisher struct {
	uploader objectUploader
	timeout  time.Duration
	now      func() time.Time
}

func NewS3Publisher(uploader objectUploader, cfg *config.Config) *S3Publisher {
	return &S3Publisher{
		uploader: uploader,
		timeout:  cfg.HTTPTimeout,
		now:      time.Now,
	}
}

func (p *S3Publisher) Provider() string { return config.HostingS3 }

func (p *S3Publisher) Configured() bool { return p.uploader != nil }

func (p *S3Publisher) Publish(ctx context.Context, asset *entity.RenderedAsset) (*entity.HostedAsset, error) {
	if p.uploader == nil {
		return nil, fmt.Errorf("%w: s3 client is not configured", entity.ErrConfiguration)
	}
	if asset == nil || len(asset.Bytes) == 0 {
		return nil, fmt.Errorf("%w: empty asset", entity.ErrUpload)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	url, err := p.uploader.UploadBytes(ctx, objectKey(p.now(), asset.MimeType), asset.Bytes, asset.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUpload, err)
	}
	if err := validatePublicURL(url); err != nil {
		return nil, fmt.Errorf("%w: s3 returned an unusable url: %v", entity.ErrUpload, err)
	}

	return &entity.HostedAsset{PublicURL: url, Provider: p.Provider()}, nil
}
