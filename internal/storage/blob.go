// Package storage wraps the external S3-compatible object store holding
// report photos and completion proofs.  Objects live in one bucket under
// the reports/ and proofs/ folders and are served through a public base
// URL.  The service originally kept uploads on local disk, so old rows
// still carry /uploads/... paths; the legacy helpers reconstruct modern
// URLs and keys for those records.
package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/essu-water/maintenance-api/internal/config"
)

// Folder names inside the bucket.
const (
	FolderReports = "reports"
	FolderProofs  = "proofs"
)

// Client talks to the object store.  The zero value is not usable; build
// one with New.
type Client struct {
	mc         *minio.Client
	bucket     string
	publicBase string
}

// New connects to the object store described by the configuration.  The
// connection itself is lazy; a bad endpoint surfaces on first use.
func New(cfg config.Config) (*Client, error) {
	mc, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		mc:         mc,
		bucket:     cfg.StorageBucket,
		publicBase: strings.TrimRight(cfg.StoragePublicURL, "/"),
	}, nil
}

// Store uploads a photo into the given folder and returns its public URL
// and storage key.  The key is derived from the upload time plus a random
// suffix and keeps the original extension, so concurrent uploads cannot
// collide or overwrite each other.  When contentType is empty it is
// inferred from the extension.
func (c *Client) Store(ctx context.Context, data []byte, logicalName, folder, contentType string) (url, key string, err error) {
	key = folder + "/" + objectName(logicalName, folder)
	if contentType == "" {
		contentType = InferContentType(logicalName)
	}
	_, err = c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("storage upload %s: %w", key, err)
	}
	return c.PublicURL(key), key, nil
}

// Remove deletes an object by storage key.  It is best-effort: failures
// are logged and reported as false, never as an error, because callers
// must not block record deletion on a missing blob.
func (c *Client) Remove(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		log.Printf("storage: remove %s failed: %v", key, err)
		return false
	}
	return true
}

// PublicURL returns the publicly resolvable URL for a storage key.
func (c *Client) PublicURL(key string) string {
	return c.publicBase + "/" + c.bucket + "/" + key
}

// ResolveLegacyURL maps a stored image locator to a public URL.  Values
// already shaped as full URLs pass through unchanged.  Legacy local
// paths are mapped into the bucket using the filename convention: proof
// images were prefixed "proof-", everything else belongs to reports/.
func (c *Client) ResolveLegacyURL(locator string) string {
	if locator == "" {
		return ""
	}
	if strings.HasPrefix(locator, "http") {
		return locator
	}
	return c.PublicURL(legacyKey(locator))
}

// Key reconstructs the storage key for a stored locator, handling both
// modern public URLs and legacy local paths.  An unrecognizable locator
// yields "".
func (c *Client) Key(locator string) string {
	if locator == "" {
		return ""
	}
	if strings.HasPrefix(locator, "http") {
		marker := "/" + c.bucket + "/"
		if i := strings.Index(locator, marker); i >= 0 {
			return locator[i+len(marker):]
		}
		return ""
	}
	return legacyKey(locator)
}

func legacyKey(locator string) string {
	name := path.Base(locator)
	folder := FolderReports
	if strings.Contains(name, "proof-") {
		folder = FolderProofs
	}
	return folder + "/" + name
}

// objectName builds a collision-resistant object name: a folder-specific
// prefix, millisecond timestamp, random hex suffix and the original
// extension (lowercased).
func objectName(logicalName, folder string) string {
	prefix := "report-"
	if folder == FolderProofs {
		prefix = "proof-"
	}
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	ext := strings.ToLower(path.Ext(logicalName))
	return fmt.Sprintf("%s%d-%s%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(buf), ext)
}

// MatchContentType maps an image extension to its MIME type.  Unknown
// extensions report ok=false so callers validating uploads can reject
// them outright.
func MatchContentType(logicalName string) (contentType string, ok bool) {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(logicalName), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg", true
	case "png":
		return "image/png", true
	case "gif":
		return "image/gif", true
	case "webp":
		return "image/webp", true
	default:
		return "", false
	}
}

// InferContentType maps an image extension to its MIME type, defaulting
// to image/jpeg for anything unknown.  Used when labeling objects whose
// extension has already been validated.
func InferContentType(logicalName string) string {
	if ct, ok := MatchContentType(logicalName); ok {
		return ct
	}
	return "image/jpeg"
}
