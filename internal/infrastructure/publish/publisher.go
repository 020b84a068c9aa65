package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

const maxErrorBodySize = 64 * 1024 // 64KB

// Publish failures, distinguishable so operators know whether to fix
// credentials, the network, or the payload. No variant is retried
// automatically; re-running the sync is the retry.
var (
	ErrAuthenticationRejected = errors.New("portal rejected the API key")
	ErrTransportFailure       = errors.New("portal is unreachable")
	ErrRemoteRejected         = errors.New("portal rejected the payload")
)

// Config holds portal endpoints and credentials for publishing.
type Config struct {
	CatalogURL  string
	LedgerURL   string
	CatalogKey  string
	LedgerKey   string
	Timeout     time.Duration
	PreviewPath string
}

// Client pushes full-replacement snapshots to the portal.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewClient builds a publishing client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// PublishCatalog replaces the portal's product catalog. An empty catalog is a
// valid replacement and clears the portal.
func (c *Client) PublishCatalog(ctx context.Context, items []catalog.Item) error {
	if items == nil {
		items = []catalog.Item{}
	}
	if err := c.post(ctx, c.cfg.CatalogURL, c.cfg.CatalogKey, "catalog", items); err != nil {
		return err
	}
	c.logger.Info("published catalog", zap.Int("items", len(items)))
	return nil
}

// PublishBalances replaces the portal's customer ledger.
func (c *Client) PublishBalances(ctx context.Context, balances []catalog.CustomerBalance) error {
	if balances == nil {
		balances = []catalog.CustomerBalance{}
	}
	if err := c.post(ctx, c.cfg.LedgerURL, c.cfg.LedgerKey, "balances", balances); err != nil {
		return err
	}
	c.logger.Info("published customer ledger", zap.Int("rows", len(balances)))
	return nil
}

func (c *Client) post(ctx context.Context, url, apiKey, collection string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	if c.cfg.PreviewPath != "" {
		path := previewPath(c.cfg.PreviewPath, collection)
		if werr := os.WriteFile(path, body, 0644); werr != nil {
			c.logger.Warn("could not write preview file",
				zap.String("path", path), zap.Error(werr))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d): %s", ErrAuthenticationRejected, resp.StatusCode, errorMessage(resp.Body))
	default:
		return fmt.Errorf("%w (status %d): %s", ErrRemoteRejected, resp.StatusCode, errorMessage(resp.Body))
	}
}

// previewPath derives a per-collection file name from the configured base
// path, so a ledger publish never overwrites the catalog preview.
func previewPath(base, collection string) string {
	ext := filepath.Ext(base)
	if ext == "" {
		return base + "_" + collection + ".json"
	}
	return strings.TrimSuffix(base, ext) + "_" + collection + ext
}

// errorMessage digs a human readable message out of an error response body.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return "no details provided"
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return string(raw)
}
