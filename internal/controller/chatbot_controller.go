package controller

import (
	"errors"

	"trading-chat-be/internal/constant"
	"trading-chat-be/internal/dto"
	"trading-chat-be/internal/pkg/serverutils"
	"trading-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service service.IChatbotService
}

func NewChatbotController(service service.IChatbotService) IChatbotController {
	return &chatbotController{service: service}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.SendChat)
	r.Get("/history/:userId", c.GetChatHistory)
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ChatErrorResponse{Error: constant.InvalidRequestBodyMessage})
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(dto.ChatErrorResponse{Error: fiberErr.Message})
		}
		return err
	}

	res, err := c.service.SendChat(ctx.UserContext(), &req)
	if err != nil {
		// Cause is logged by the service; the client only gets the generic text
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ChatErrorResponse{Error: constant.ChatFailedMessage})
	}

	return ctx.JSON(res)
}

func (c *chatbotController) GetChatHistory(ctx *fiber.Ctx) error {
	res, err := c.service.GetChatHistory(ctx.UserContext(), ctx.Params("userId"))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
