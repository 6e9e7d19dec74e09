package blog

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/okleinman/scribe/internal/storage"
)

// dataImagePattern matches markdown images with inline base64 data URLs.
var dataImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(data:image/([a-zA-Z0-9.+-]+);base64,([^)\s]+)\)`)

var allowedImageTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ImageProcessor moves inline data: images out of markdown bodies into
// object storage and rewrites them to public URLs. Anything it cannot
// handle (disallowed type, broken base64, failed upload) is left inline.
type ImageProcessor struct {
	store   storage.Storage
	bucket  string
	region  string
	cdnBase string
	logger  *slog.Logger
}

func NewImageProcessor(store storage.Storage, bucket, region, cdnBase string, logger *slog.Logger) *ImageProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageProcessor{
		store:   store,
		bucket:  bucket,
		region:  region,
		cdnBase: cdnBase,
		logger:  logger,
	}
}

// Process rewrites every extractable inline image in body, storing the
// decoded payloads under prefix.
func (ip *ImageProcessor) Process(ctx context.Context, prefix, body string) string {
	return dataImagePattern.ReplaceAllStringFunc(body, func(match string) string {
		groups := dataImagePattern.FindStringSubmatch(match)
		alt, imgType, encoded := groups[1], strings.ToLower(groups[2]), groups[3]

		contentType, ok := allowedImageTypes[imgType]
		if !ok {
			return match
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return match
		}

		ext := imgType
		if ext == "jpg" {
			ext = "jpeg"
		}
		key := fmt.Sprintf("%s/%s.%s", prefix, uuid.New(), ext)
		if err := ip.store.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			ip.logger.Warn("inline image upload failed", "key", key, "error", err)
			return match
		}
		return fmt.Sprintf("![%s](%s)", alt, ip.publicURL(key))
	})
}

// Remove deletes every stored object under prefix.
func (ip *ImageProcessor) Remove(ctx context.Context, prefix string) error {
	return ip.store.DeletePrefix(ctx, prefix)
}

func (ip *ImageProcessor) publicURL(key string) string {
	if ip.cdnBase != "" {
		return strings.TrimRight(ip.cdnBase, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", ip.bucket, ip.region, key)
}
