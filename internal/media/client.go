package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"craftstore/internal/util"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Client proxies image uploads and deletions to the hosted media store.
type Client struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *zap.Logger
}

// NewClient creates a Cloudinary-backed media client.
func NewClient(cloudName, apiKey, apiSecret, folder string) (*Client, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Client{
		cld:    cld,
		folder: folder,
		logger: util.GetLogger(),
	}, nil
}

// UploadResult is the stable reference returned for an uploaded image.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Upload stores an image and returns its URL plus a deletable identifier.
func (c *Client) Upload(ctx context.Context, file io.Reader) (*UploadResult, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: c.folder,
	})
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("upload failed: %s", resp.Error.Message)
	}

	c.logger.Info("Image uploaded", zap.String("public_id", resp.PublicID))
	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
	}, nil
}

// Delete removes an image by its public id. An already-deleted image is
// treated as success.
func (c *Client) Delete(ctx context.Context, publicID string) error {
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	switch resp.Result {
	case "ok", "not found", "not_found":
		c.logger.Info("Image deleted", zap.String("public_id", publicID))
		return nil
	}
	return fmt.Errorf("delete failed: %s", resp.Result)
}

// PublicIDFromURL derives a deletable identifier from a delivery URL: the
// last path segment with its file extension stripped. Best effort only: it
// loses folder prefixes, so URLs with nested folders may not resolve.
func PublicIDFromURL(rawURL string) string {
	url := rawURL
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}

	parts := strings.Split(url, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return ""
	}

	if i := strings.LastIndexByte(last, '.'); i > 0 {
		last = last[:i]
	}
	return last
}
