package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-pos-sync/internal/catalog"
)

const (
	headerSignature = "X-Signature"
	headerTopic     = "X-Topic"

	TopicCreated = "created"
	TopicUpdated = "updated"
	TopicDeleted = "deleted"
)

// Webhook receives push notifications from the catalog platform. The
// signature is verified over the raw body before anything is parsed, with a
// constant-time compare: a forged or replayed-and-tampered request never
// reaches the applier.
type Webhook struct {
	secret  []byte
	applier *Applier
	logger  *zap.Logger
}

func NewWebhook(secret string, applier *Applier, logger *zap.Logger) *Webhook {
	return &Webhook{secret: []byte(secret), applier: applier, logger: logger}
}

func (h *Webhook) Handle(c *fiber.Ctx) error {
	topic := c.Get(headerTopic)
	switch topic {
	case TopicCreated, TopicUpdated, TopicDeleted:
	default:
		return c.Status(400).JSON(fiber.Map{"error": "unknown topic"})
	}

	body := c.Body()
	sig := c.Get(headerSignature)
	if sig == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing signature"})
	}
	given, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "malformed signature"})
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), given) {
		h.logger.Warn("webhook signature mismatch", zap.String("topic", topic))
		return c.Status(401).JSON(fiber.Map{"error": "invalid signature"})
	}

	var rec catalog.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if rec.ID == uuid.Nil {
		return c.Status(400).JSON(fiber.Map{"error": "missing product id"})
	}
	if topic == TopicDeleted {
		rec.Deleted = true
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	applied, err := h.applier.ApplyCatalogRecord(c.Context(), rec)
	if err != nil {
		h.logger.Error("webhook apply failed",
			zap.String("topic", topic),
			zap.String("id", rec.ID.String()),
			zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "apply failed"})
	}

	h.logger.Info("webhook processed",
		zap.String("topic", topic),
		zap.String("id", rec.ID.String()),
		zap.Bool("applied", applied))
	return c.JSON(fiber.Map{"applied": applied})
}
