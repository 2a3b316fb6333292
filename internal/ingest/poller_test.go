package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-pos-sync/internal/catalog"
	"go-pos-sync/internal/model"
)

type pageServer struct {
	pages         [][]catalog.Record
	calls         atomic.Int32
	failOnPage    int
	modifiedAfter atomic.Value
}

func (s *pageServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if v := r.URL.Query().Get("modified_after"); v != "" {
			s.modifiedAfter.Store(v)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if s.failOnPage > 0 && page >= s.failOnPage {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		var out []catalog.Record
		if page >= 1 && page <= len(s.pages) {
			out = s.pages[page-1]
		}
		json.NewEncoder(w).Encode(map[string][]catalog.Record{"products": out})
	}
}

func pageOf(n int, at time.Time) []catalog.Record {
	out := make([]catalog.Record, n)
	for i := range out {
		out[i] = catalog.Record{
			ID:        uuid.New(),
			SKU:       "SKU-" + uuid.NewString()[:8],
			Name:      "Produk",
			Price:     1000,
			UpdatedAt: at.Add(-time.Duration(i) * time.Second),
		}
	}
	return out
}

func newPoller(t *testing.T, env *ingestEnv, url string, pageSize int) *Poller {
	t.Helper()
	client := catalog.NewClient(url, "", 5*time.Second)
	t.Cleanup(func() { client.Close() })
	return NewPoller(client, env.applier, env.local, time.Hour, pageSize, time.Millisecond, zaptest.NewLogger(t))
}

func TestPollerWalksAllPages(t *testing.T) {
	now := time.Now()
	srv := &pageServer{pages: [][]catalog.Record{pageOf(2, now), pageOf(2, now), pageOf(1, now)}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	env := newIngestEnv(t)
	p := newPoller(t, env, ts.URL, 2)

	checkpoint := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, env.local.SetCheckpoint(model.CheckpointLastPoll, checkpoint))

	require.NoError(t, p.RunOnce(context.Background()))

	assert.Equal(t, int32(3), srv.calls.Load(), "pages until the short one, no more")
	assert.Equal(t, "2026-07-01T09:00:00Z", srv.modifiedAfter.Load())

	products, err := env.local.ListProducts()
	require.NoError(t, err)
	assert.Len(t, products, 5)

	cp, err := env.local.Checkpoint(model.CheckpointLastPoll)
	require.NoError(t, err)
	assert.True(t, cp.After(checkpoint), "complete walk advances the checkpoint")
}

func TestPollerKeepsCheckpointOnTransportFailure(t *testing.T) {
	now := time.Now()
	srv := &pageServer{
		pages:      [][]catalog.Record{pageOf(2, now), pageOf(2, now)},
		failOnPage: 2,
	}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	env := newIngestEnv(t)
	p := newPoller(t, env, ts.URL, 2)

	require.Error(t, p.RunOnce(context.Background()))

	cp, err := env.local.Checkpoint(model.CheckpointLastPoll)
	require.NoError(t, err)
	assert.True(t, cp.IsZero(), "failed walk must not advance the checkpoint")

	// page one landed; the next walk re-covers the rest
	products, err := env.local.ListProducts()
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestPollerSkipsOlderVersionsButAdvances(t *testing.T) {
	env := newIngestEnv(t)

	p := &model.Product{SKU: "SKU-KEEP", Name: "Edit Lokal", Price: 5000, StockStatus: model.StockInStock}
	require.NoError(t, env.local.CreateProduct(p))
	stored, err := env.local.GetProduct(p.ID)
	require.NoError(t, err)

	stale := catalog.Record{
		ID:        p.ID,
		SKU:       "SKU-KEEP",
		Name:      "Versi Lama",
		Price:     4000,
		UpdatedAt: stored.UpdatedAt.Add(-time.Hour),
	}
	srv := &pageServer{pages: [][]catalog.Record{{stale}}}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	poller := newPoller(t, env, ts.URL, 2)
	require.NoError(t, poller.RunOnce(context.Background()))

	after, err := env.local.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edit Lokal", after.Name)

	cp, err := env.local.Checkpoint(model.CheckpointLastPoll)
	require.NoError(t, err)
	assert.False(t, cp.IsZero(), "record-level skips do not block the feed")
}
