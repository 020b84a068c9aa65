package images

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

// knownExtensions are checked, in order, when probing for an existing local
// image.
var knownExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// nameNoise strips pack-size annotations like "* 12" from product names
// before they are used as search keywords.
var nameNoise = regexp.MustCompile(`\s*\*.*$`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Resolver locates or downloads a product image and returns the relative
// reference to publish. Resolution is best-effort: any failure degrades to
// the placeholder reference, never to an aborted sync.
type Resolver struct {
	dir    string
	search SearchClient
	client *http.Client
	logger *zap.Logger
}

// NewResolver builds a resolver writing into dir.
func NewResolver(dir string, search SearchClient, downloadTimeout time.Duration, logger *zap.Logger) *Resolver {
	if downloadTimeout == 0 {
		downloadTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		dir:    dir,
		search: search,
		client: &http.Client{Timeout: downloadTimeout},
		logger: logger,
	}
}

// Resolve returns the image reference for a product. An image already on
// disk short-circuits every network step, which is what makes repeated syncs
// cheap. Otherwise the barcode is searched first, then the cleaned product
// name, and the winning URL is downloaded.
func (r *Resolver) Resolve(ctx context.Context, code, name, barcode string) string {
	if existing := r.existingImage(code); existing != "" {
		return existing
	}

	imageURL := r.findImageURL(ctx, code, name, barcode)
	if imageURL == "" {
		return catalog.PlaceholderImagePath
	}

	ref, err := r.download(ctx, code, imageURL)
	if err != nil {
		r.logger.Warn("image download failed",
			zap.String("code", code),
			zap.String("url", imageURL),
			zap.Error(err))
		return catalog.PlaceholderImagePath
	}
	return ref
}

// existingImage probes the image directory for any known extension.
func (r *Resolver) existingImage(code string) string {
	base := "product_" + catalog.SanitizeCode(code)
	for _, ext := range knownExtensions {
		candidate := filepath.Join(r.dir, base+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return path.Join("images", base+ext)
		}
	}
	return ""
}

func (r *Resolver) findImageURL(ctx context.Context, code, name, barcode string) string {
	if barcode = strings.TrimSpace(barcode); barcode != "" {
		if u, err := r.search.FirstImageURL(ctx, barcode+" ürün"); err == nil {
			return u
		} else {
			r.logger.Debug("barcode image search failed",
				zap.String("code", code), zap.Error(err))
		}
	}

	keywords := CleanName(name)
	if keywords == "" {
		return ""
	}
	u, err := r.search.FirstImageURL(ctx, keywords+" ürün resmi")
	if err != nil {
		r.logger.Debug("name image search failed",
			zap.String("code", code), zap.Error(err))
		return ""
	}
	return u
}

// download fetches the image and stores it with an extension inferred from
// the URL, the Content-Type, or ".jpg" as a last resort.
func (r *Resolver) download(ctx context.Context, code, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	ext := extensionFor(imageURL, resp.Header.Get("Content-Type"))
	filename := "product_" + catalog.SanitizeCode(code) + ext

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}

	target := filepath.Join(r.dir, filename)
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, io.LimitReader(resp.Body, maxImageSize)); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("writing image file: %w", err)
	}

	r.logger.Info("downloaded product image",
		zap.String("code", code),
		zap.String("file", filename))
	return path.Join("images", filename), nil
}

// CleanName reduces a product name to search keywords.
func CleanName(name string) string {
	cleaned := nameNoise.ReplaceAllString(name, "")
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// extensionFor picks a file extension from the URL path, falling back to the
// response Content-Type, then ".jpg".
func extensionFor(imageURL, contentType string) string {
	if u, err := url.Parse(imageURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
			for _, known := range knownExtensions {
				if ext == known {
					return ext
				}
			}
		}
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "image/jpeg":
			return ".jpg"
		case "image/png":
			return ".png"
		case "image/gif":
			return ".gif"
		case "image/webp":
			return ".webp"
		case "image/bmp":
			return ".bmp"
		}
	}

	return ".jpg"
}
