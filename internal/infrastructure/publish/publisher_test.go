package publish

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

func testItems() []catalog.Item {
	return []catalog.Item{
		{
			Code:      "ST-001",
			Name:      "KIRMIZI BİBER",
			Balance:   decimal.NewFromInt(42),
			Price:     decimal.RequireFromString("17.50"),
			GroupCode: "BAHARAT",
			ImagePath: "images/product_ST-001.jpg",
		},
	}
}

func TestPublishCatalog(t *testing.T) {
	t.Run("posts the full catalog with the API key", func(t *testing.T) {
		var gotKey string
		var gotBody []catalog.Item

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-API-Key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(Config{CatalogURL: server.URL, CatalogKey: "secret"}, nil)
		err := client.PublishCatalog(context.Background(), testItems())

		require.NoError(t, err)
		assert.Equal(t, "secret", gotKey)
		require.Len(t, gotBody, 1)
		assert.Equal(t, "ST-001", gotBody[0].Code)
		assert.True(t, gotBody[0].Price.Equal(decimal.RequireFromString("17.50")))
	})

	t.Run("empty catalog publishes an empty array", func(t *testing.T) {
		var raw []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(Config{CatalogURL: server.URL}, nil)
		require.NoError(t, client.PublishCatalog(context.Background(), nil))
		assert.JSONEq(t, "[]", string(raw))
	})

	t.Run("401 maps to authentication rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
		}))
		defer server.Close()

		client := NewClient(Config{CatalogURL: server.URL, CatalogKey: "wrong"}, nil)
		err := client.PublishCatalog(context.Background(), testItems())

		require.ErrorIs(t, err, ErrAuthenticationRejected)
		assert.Contains(t, err.Error(), "bad key")
	})

	t.Run("500 maps to remote rejection with server message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"storage offline"}`))
		}))
		defer server.Close()

		client := NewClient(Config{CatalogURL: server.URL}, nil)
		err := client.PublishCatalog(context.Background(), testItems())

		require.ErrorIs(t, err, ErrRemoteRejected)
		assert.Contains(t, err.Error(), "storage offline")
	})

	t.Run("unreachable portal maps to transport failure", func(t *testing.T) {
		client := NewClient(Config{CatalogURL: "http://127.0.0.1:1/api/products"}, nil)
		err := client.PublishCatalog(context.Background(), testItems())
		assert.ErrorIs(t, err, ErrTransportFailure)
	})

	t.Run("preview file captures the exact payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		dir := t.TempDir()
		client := NewClient(Config{CatalogURL: server.URL, PreviewPath: filepath.Join(dir, "preview.json")}, nil)
		require.NoError(t, client.PublishCatalog(context.Background(), testItems()))

		raw, err := os.ReadFile(filepath.Join(dir, "preview_catalog.json"))
		require.NoError(t, err)
		var items []catalog.Item
		require.NoError(t, json.Unmarshal(raw, &items))
		assert.Equal(t, "ST-001", items[0].Code)
	})

	t.Run("catalog and ledger previews land in separate files", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		dir := t.TempDir()
		client := NewClient(Config{
			CatalogURL:  server.URL,
			LedgerURL:   server.URL,
			PreviewPath: filepath.Join(dir, "preview.json"),
		}, nil)

		require.NoError(t, client.PublishCatalog(context.Background(), testItems()))
		require.NoError(t, client.PublishBalances(context.Background(), []catalog.CustomerBalance{
			{Code: "120-001", Net: decimal.NewFromInt(100)},
		}))

		raw, err := os.ReadFile(filepath.Join(dir, "preview_catalog.json"))
		require.NoError(t, err)
		var items []catalog.Item
		require.NoError(t, json.Unmarshal(raw, &items))
		assert.Equal(t, "ST-001", items[0].Code)

		raw, err = os.ReadFile(filepath.Join(dir, "preview_balances.json"))
		require.NoError(t, err)
		var balances []catalog.CustomerBalance
		require.NoError(t, json.Unmarshal(raw, &balances))
		assert.Equal(t, "120-001", balances[0].Code)
	})
}

func TestPublishBalances(t *testing.T) {
	t.Run("uses the ledger endpoint and key", func(t *testing.T) {
		var gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-API-Key")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(Config{LedgerURL: server.URL, LedgerKey: "ledger-secret"}, nil)
		err := client.PublishBalances(context.Background(), []catalog.CustomerBalance{
			{Code: "120-001", Net: decimal.NewFromInt(100)},
		})

		require.NoError(t, err)
		assert.Equal(t, "ledger-secret", gotKey)
	})
}
