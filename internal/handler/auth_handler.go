package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-pos-sync/internal/service"
)

type AuthHandler struct {
	terminals service.TerminalService
}

func NewAuthHandler(terminals service.TerminalService) *AuthHandler {
	return &AuthHandler{terminals: terminals}
}

type loginRequest struct {
	Name      string `json:"name"`
	AccessKey string `json:"access_key"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Name == "" || req.AccessKey == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and access_key are required"})
	}

	res, err := h.terminals.Login(req.Name, req.AccessKey)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}
