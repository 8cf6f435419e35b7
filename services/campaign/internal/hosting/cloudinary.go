package hosting

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"brandcast/pkg/config"
	"brandcast/services/campaign/internal/entity"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryPublisher hosts assets on Cloudinary and returns the secure URL.
type CloudinaryPublisher struct {
	upload  cloudinaryUploader
	folder  string
	timeout time.Duration
}

func NewCloudinaryPublisher(cfg *config.Config) (*CloudinaryPublisher, error) {
	if !cfg.CloudinaryConfigured() {
		return nil, fmt.Errorf("%w: cloudinary cloud name, api key and secret are required", entity.ErrConfiguration)
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create cloudinary client: %v", entity.ErrConfiguration, err)
	}
	return &CloudinaryPublisher{
		upload:  &cld.Upload,
		folder:  cfg.CloudinaryFolder,
		timeout: cfg.HTTPTimeout,
	}, nil
}

func (p *CloudinaryPublisher) Provider() string { return config.HostingCloudinary }

func (p *CloudinaryPublisher) Configured() bool { return p.upload != nil }

func (p *CloudinaryPublisher) Publish(ctx context.Context, asset *entity.RenderedAsset) (*entity.HostedAsset, error) {
	if p.upload == nil {
		return nil, fmt.Errorf("%w: cloudinary client is not configured", entity.ErrConfiguration)
	}
	if asset == nil || len(asset.Bytes) == 0 {
		return nil, fmt.Errorf("%w: empty asset", entity.ErrUpload)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.upload.Upload(ctx, bytes.NewReader(asset.Bytes), uploader.UploadParams{
		PublicID:     uuid.New().String(),
		Folder:       p.folder,
		ResourceType: "image",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cloudinary upload failed: %v", entity.ErrUpload, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: cloudinary returned no result", entity.ErrUpload)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("%w: cloudinary: %s", entity.ErrUpload, res.Error.Message)
	}
	if !strings.HasPrefix(res.SecureURL, "https://") {
		return nil, fmt.Errorf("%w: cloudinary returned no secure url", entity.ErrUpload)
	}

	return &entity.HostedAsset{PublicURL: res.SecureURL, Provider: p.Provider()}, nil
}
