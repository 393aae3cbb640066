package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"marquee/internal/fileutil"
	"marquee/internal/logging"
	"marquee/internal/store"
)

// MetadataStore records asset metadata.
type MetadataStore interface {
	UpsertAsset(ctx context.Context, asset store.Asset) (*store.Asset, error)
}

// Importer downloads images and stores them.
type Importer struct {
	dir        string
	timeout    time.Duration
	maxBytes   int64
	httpClient *http.Client
	store      MetadataStore
	logger     *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithHTTPClient overrides the download client.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Importer) {
		if client != nil {
			i.httpClient = client
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}

// NewImporter constructs an Importer writing into dir.
func NewImporter(dir string, timeout time.Duration, maxBytes int64, metadata MetadataStore, opts ...Option) *Importer {
	imp := &Importer{
		dir:        dir,
		timeout:    timeout,
		maxBytes:   maxBytes,
		httpClient: &http.Client{},
		store:      metadata,
	}
	for _, opt := range opts {
		opt(imp)
	}
	imp.logger = logging.NewComponentLogger(imp.logger, "assets")
	return imp
}

// ImportAsset downloads remoteURL and returns a reference to the stored copy,
// or nil when anything goes wrong.
func (i *Importer) ImportAsset(ctx context.Context, remoteURL string) *store.AssetRef {
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return nil
	}
	asset, err := i.importAsset(ctx, remoteURL)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, i.logger), "asset import failed", "asset_import_failed",
			logging.String("url", remoteURL),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the image URL is reachable"),
			logging.String(logging.FieldImpact, "document stored without this image"),
		)
		return nil
	}
	i.logger.Debug("asset imported",
		logging.String("url", remoteURL),
		logging.String("asset_id", asset.ID),
		logging.Int64("size_bytes", asset.SizeBytes),
	)
	return asset.Ref()
}

func (i *Importer) importAsset(ctx context.Context, remoteURL string) (*store.Asset, error) {
	if i.store == nil {
		return nil, errors.New("asset store not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}
	if i.maxBytes > 0 && resp.ContentLength > i.maxBytes {
		return nil, fmt.Errorf("%w: declared %d bytes", fileutil.ErrTooLarge, resp.ContentLength)
	}
	contentType, err := imageContentType(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	written, err := fileutil.WriteContentAddressed(i.dir, resp.Body, i.maxBytes, extensionFor(contentType))
	if err != nil {
		return nil, err
	}
	if written.Size == 0 {
		return nil, errors.New("empty body")
	}
	return i.store.UpsertAsset(ctx, store.Asset{
		SHA256:      written.SHA256,
		SourceURL:   remoteURL,
		ContentType: contentType,
		SizeBytes:   written.Size,
		Path:        written.Path,
	})
}

func imageContentType(header string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", fmt.Errorf("content type %q: %w", header, err)
	}
	mediaType = strings.ToLower(mediaType)
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("content type %q is not an image", mediaType)
	}
	return mediaType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
