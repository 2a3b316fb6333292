package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/store"
	"go-pos-sync/internal/sync"
)

type SyncHandler struct {
	coordinator *sync.Coordinator
	local       *store.Local
}

func NewSyncHandler(coordinator *sync.Coordinator, local *store.Local) *SyncHandler {
	return &SyncHandler{coordinator: coordinator, local: local}
}

// GetStatus reports what the engine is doing right now, for the status bar
// on the POS screen.
func (h *SyncHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.coordinator.Status())
}

// Trigger asks for an immediate cycle. It answers honestly instead of
// queueing: a busy or offline engine is a state the cashier can see.
func (h *SyncHandler) Trigger(c *fiber.Ctx) error {
	err := h.coordinator.TriggerSync()
	switch {
	case err == nil:
		return c.Status(202).JSON(fiber.Map{"message": "Sync started"})
	case errors.Is(err, sync.ErrBusy):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, sync.ErrOffline), errors.Is(err, sync.ErrNotReady):
		return c.Status(503).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

// GetCheckpoints exposes the persisted ingestion positions, mostly for
// support diagnostics.
func (h *SyncHandler) GetCheckpoints(c *fiber.Ctx) error {
	out := fiber.Map{}
	for _, name := range []string{
		model.CheckpointLastPoll,
		model.CheckpointLastReconcile,
		model.CheckpointLastCloudPull,
	} {
		value, err := h.local.Checkpoint(name)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
		if value.IsZero() {
			out[name] = nil
		} else {
			out[name] = value
		}
	}
	return c.JSON(out)
}
