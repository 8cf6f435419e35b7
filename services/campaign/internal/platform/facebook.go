package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"brandcast/pkg/config"
	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/entity"
)

// Facebook posts a photo to a page in one call, by URL when the asset is
// hosted and as a multipart upload of the raw bytes otherwise.
type Facebook struct {
	baseURL   string
	pageToken string
	pageID    string
	client    *http.Client
	logger    *logger.Logger
}

func NewFacebook(cfg *config.Config, client *http.Client, log *logger.Logger) *Facebook {
	return &Facebook{
		baseURL:   fmt.Sprintf("%s/%s", strings.TrimRight(cfg.FacebookGraphURL, "/"), cfg.GraphAPIVersion),
		pageToken: cfg.FacebookPageToken,
		pageID:    cfg.FacebookPageID,
		client:    newHTTPClient(client, cfg.HTTPTimeout),
		logger:    log,
	}
}

func (c *Facebook) Platform() entity.Platform { return entity.PlatformFacebook }

func (c *Facebook) RequiresHostedURL() bool { return false }

func (c *Facebook) Publish(ctx context.Context, media Media, caption string) (Result, error) {
	var (
		req *http.Request
		err error
	)
	switch {
	case media.HostedURL != "":
		c.logger.Info("[FACEBOOK] Posting photo by url to page_id=%s", c.pageID)
		req, err = c.urlRequest(ctx, media.HostedURL, caption)
	case media.Asset != nil && len(media.Asset.Bytes) > 0:
		c.logger.Info("[FACEBOOK] Uploading photo bytes to page_id=%s", c.pageID)
		req, err = c.uploadRequest(ctx, media.Asset, caption)
	default:
		err = fmt.Errorf("no image to post")
	}
	if err != nil {
		return Result{State: StateFailed}, fmt.Errorf("%w: %v", entity.ErrPublish, err)
	}

	data, err := doGraph(c.client, req)
	if err != nil {
		c.logger.Error("[FACEBOOK] Photo post failed: %v", err)
		return Result{State: StateFailed}, fmt.Errorf("%w: %v", entity.ErrPublish, err)
	}

	postID := data.PostID
	if postID == "" {
		postID = data.ID
	}
	if postID == "" {
		return Result{State: StateFailed}, fmt.Errorf("%w: response carried no post id", entity.ErrPublish)
	}

	c.logger.Info("[FACEBOOK] Photo posted: post_id=%s", postID)
	return Result{PostID: postID, State: StatePublished}, nil
}

func (c *Facebook) urlRequest(ctx context.Context, imageURL, caption string) (*http.Request, error) {
	body, err := json.Marshal(map[string]string{
		"url":          imageURL,
		"caption":      caption,
		"access_token": c.pageToken,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.photosURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Facebook) uploadRequest(ctx context.Context, asset *entity.RenderedAsset, caption string) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("caption", caption); err != nil {
		return nil, err
	}
	if err := writer.WriteField("access_token", c.pageToken); err != nil {
		return nil, err
	}
	part, err := writer.CreateFormFile("source", "campaign"+extensionFor(asset.MimeType))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(asset.Bytes); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.photosURL(), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func (c *Facebook) photosURL() string {
	return fmt.Sprintf("%s/%s/photos", c.baseURL, c.pageID)
}

func extensionFor(mimeType string) string {
	if mimeType == "image/jpeg" {
		return ".jpg"
	}
	return ".png"
}
