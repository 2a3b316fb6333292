package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSendsFilterAndPaging(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		gotQuery = map[string]string{
			"page":           r.URL.Query().Get("page"),
			"per_page":       r.URL.Query().Get("per_page"),
			"modified_after": r.URL.Query().Get("modified_after"),
		}
		json.NewEncoder(w).Encode(listResponse{Products: []Record{
			{ID: uuid.New(), SKU: "SKU-1", Name: "Beras 5kg", Price: 72000, UpdatedAt: time.Now()},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	defer c.Close()

	after := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	records, err := c.List(context.Background(), after, 2, 100)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SKU-1", records[0].SKU)
	assert.Equal(t, "2", gotQuery["page"])
	assert.Equal(t, "100", gotQuery["per_page"])
	assert.Equal(t, "2026-06-01T08:00:00Z", gotQuery["modified_after"])
}

func TestListFullWalkOmitsFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("modified_after"))
		json.NewEncoder(w).Encode(listResponse{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	defer c.Close()

	records, err := c.List(context.Background(), time.Time{}, 1, 100)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	defer c.Close()

	_, err := c.List(context.Background(), time.Time{}, 1, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestListAllIDs(t *testing.T) {
	want := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/ids", r.URL.Path)
		json.NewEncoder(w).Encode(idsResponse{IDs: want})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	defer c.Close()

	ids, err := c.ListAllIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, ids)
}

func TestListPagesUntilShortPage(t *testing.T) {
	// three pages of 100, 100, 50 mean three calls and no fourth
	pages := map[string]int{"1": 100, "2": 100, "3": 50}
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		n := pages[r.URL.Query().Get("page")]
		out := make([]Record, n)
		for i := range out {
			out[i] = Record{ID: uuid.New(), SKU: fmt.Sprintf("SKU-%d", i)}
		}
		json.NewEncoder(w).Encode(listResponse{Products: out})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	defer c.Close()

	total := 0
	for page := 1; ; page++ {
		records, err := c.List(context.Background(), time.Time{}, page, 100)
		require.NoError(t, err)
		total += len(records)
		if len(records) < 100 {
			break
		}
	}
	assert.Equal(t, 250, total)
	assert.Equal(t, 3, calls)
}
