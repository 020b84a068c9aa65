package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const maxSearchResponseSize = 2 * 1024 * 1024 // 2MB

// ErrNoResults is returned when a search yields no usable image URL.
var ErrNoResults = errors.New("image search returned no results")

// SearchClient finds a candidate image URL for a set of keywords.
type SearchClient interface {
	FirstImageURL(ctx context.Context, keywords string) (string, error)
}

// MetaSearchClient queries a self-hosted metasearch instance's JSON API for
// image results and returns the first hit.
type MetaSearchClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewMetaSearchClient builds a search client against the given base URL.
func NewMetaSearchClient(baseURL string, timeout time.Duration, logger *zap.Logger) *MetaSearchClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaSearchClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type searchResponse struct {
	Results []struct {
		ImgSrc string `json:"img_src"`
	} `json:"results"`
}

// FirstImageURL implements SearchClient.
func (c *MetaSearchClient) FirstImageURL(ctx context.Context, keywords string) (string, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&categories=images&format=json",
		c.baseURL, url.QueryEscape(keywords))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchResponseSize))
	if err != nil {
		return "", fmt.Errorf("reading search response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding search response: %w", err)
	}

	for _, result := range parsed.Results {
		if result.ImgSrc != "" {
			return result.ImgSrc, nil
		}
	}
	return "", ErrNoResults
}
