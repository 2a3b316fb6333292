package handler

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
	"go-pos-sync/internal/sync"
)

func newSyncApp(t *testing.T) (*fiber.App, *store.Local) {
	t.Helper()
	local := newTestLocal(t)
	// not started: the handler's mapping is what is under test here, the
	// cycle itself is covered in the sync package
	coordinator := sync.New(sync.Config{
		Debounce:  time.Millisecond,
		Interval:  time.Hour,
		OpTimeout: time.Second,
	}, local, nil, nil, nil, zaptest.NewLogger(t), nil)
	h := NewSyncHandler(coordinator, local)

	app := fiber.New()
	app.Get("/api/v1/sync/status", h.GetStatus)
	app.Post("/api/v1/sync/trigger", h.Trigger)
	app.Get("/api/v1/sync/checkpoints", h.GetCheckpoints)
	return app, local
}

func TestStatusReportsIdleEngine(t *testing.T) {
	app, _ := newSyncApp(t)

	status, body := doJSON(t, app, "GET", "/api/v1/sync/status", "")
	require.Equal(t, 200, status)
	assert.Equal(t, "idle", body["state"])
	assert.Equal(t, false, body["online"])
	assert.EqualValues(t, 0, body["pending"])
}

func TestStatusCountsPendingRecords(t *testing.T) {
	app, local := newSyncApp(t)

	p := &model.Product{SKU: "SYNC-1", Name: "Produk", Price: 100, Stock: 1}
	require.NoError(t, local.CreateProduct(p))

	status, body := doJSON(t, app, "GET", "/api/v1/sync/status", "")
	require.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["pending"])
}

func TestTriggerUnavailableWhenEngineNotRunning(t *testing.T) {
	app, _ := newSyncApp(t)

	status, body := doJSON(t, app, "POST", "/api/v1/sync/trigger", "")
	assert.Equal(t, 503, status)
	assert.NotEmpty(t, body["error"])
}

func TestCheckpointsNullUntilAdvanced(t *testing.T) {
	app, local := newSyncApp(t)

	status, body := doJSON(t, app, "GET", "/api/v1/sync/checkpoints", "")
	require.Equal(t, 200, status)
	assert.Nil(t, body[model.CheckpointLastPoll])
	assert.Nil(t, body[model.CheckpointLastReconcile])
	assert.Nil(t, body[model.CheckpointLastCloudPull])

	mark := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	require.NoError(t, local.SetCheckpoint(model.CheckpointLastPoll, mark))

	status, body = doJSON(t, app, "GET", "/api/v1/sync/checkpoints", "")
	require.Equal(t, 200, status)
	assert.NotNil(t, body[model.CheckpointLastPoll])
	assert.Nil(t, body[model.CheckpointLastReconcile])
}
