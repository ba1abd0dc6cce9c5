package controller

import (
	"errors"

	"trading-chat-be/internal/constant"
	"trading-chat-be/internal/dto"
	"trading-chat-be/internal/pkg/serverutils"
	"trading-chat-be/internal/service"
	"trading-chat-be/pkg/spreadsheet"

	"github.com/gofiber/fiber/v2"
)

type IFinancialDataController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	GetFinancialData(ctx *fiber.Ctx) error
}

type financialDataController struct {
	service service.IFinancialDataService
}

func NewFinancialDataController(service service.IFinancialDataService) IFinancialDataController {
	return &financialDataController{service: service}
}

func (c *financialDataController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
	r.Get("/financial-data/:userId", c.GetFinancialData)
}

func (c *financialDataController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.UploadErrorResponse{Message: constant.NoFileUploadedMessage})
	}

	req := dto.UploadFinancialDataRequest{
		UserId:   ctx.FormValue("userId"),
		FileName: fileHeader.Filename,
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(dto.UploadErrorResponse{Message: fiberErr.Message})
		}
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.UploadErrorResponse{
			Message: constant.UploadFailedMessage,
			Error:   "failed to open uploaded file",
		})
	}
	defer file.Close()

	res, err := c.service.UploadFinancialData(ctx.UserContext(), &req, file)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.UploadErrorResponse{
			Message: constant.UploadFailedMessage,
			Error:   uploadErrorDetail(err),
		})
	}

	return ctx.JSON(res)
}

func (c *financialDataController) GetFinancialData(ctx *fiber.Ctx) error {
	res, err := c.service.GetFinancialData(ctx.UserContext(), ctx.Params("userId"))
	if err != nil {
		if errors.Is(err, dto.ErrFinancialDataMissing) {
			return ctx.Status(fiber.StatusNotFound).JSON(dto.NotFoundResponse{Message: constant.FinancialDataNotFound})
		}
		return err
	}

	return ctx.JSON(res)
}

// uploadErrorDetail decides what the client may see: conversion problems are
// described, completion failures stay generic.
func uploadErrorDetail(err error) string {
	var convErr *spreadsheet.ConversionError
	if errors.As(err, &convErr) {
		return convErr.Error()
	}
	var upstreamErr *dto.UpstreamError
	if errors.As(err, &upstreamErr) {
		return constant.UploadAnalysisFailedDetail
	}
	return "failed to process upload"
}
