package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStockLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/inventory/products/glifosato-48/stock", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"productId":"glifosato-48","available":120.5,"unit":" L "}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/", "secret", time.Second)
	level, err := client.StockLevel(context.Background(), "glifosato-48")
	require.NoError(t, err)
	require.Equal(t, "glifosato-48", level.ProductID)
	require.Equal(t, 120.5, level.Available)
	require.Equal(t, "L", level.Unit)
}

func TestStockLevelWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"available":3,"unit":"kg"}`))
	}))
	defer srv.Close()

	level, err := NewClient(srv.URL, "", 0).StockLevel(context.Background(), "urea")
	require.NoError(t, err)
	require.Equal(t, "urea", level.ProductID)
	require.Equal(t, 3.0, level.Available)
}

func TestStockLevelErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inventory/products/missing/stock":
			http.NotFound(w, r)
		case "/inventory/products/broken/stock":
			_, _ = w.Write([]byte(`{not json`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)

	_, err := client.StockLevel(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = client.StockLevel(context.Background(), "broken")
	require.ErrorContains(t, err, "decode stock response")

	_, err = client.StockLevel(context.Background(), "other")
	require.ErrorContains(t, err, "status=502")
	require.ErrorContains(t, err, "upstream down")
}
