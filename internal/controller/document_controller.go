package controller

import (
	"errors"
	"io"

	"coreader-client/internal/dto"
	"coreader-client/internal/pkg/serverutils"
	"coreader-client/internal/repository/contract"
	"coreader-client/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	ToggleStatus(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ClearMemory(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Get("/get_uploaded_files", c.List)
	r.Post("/upload_file", c.Upload)
	r.Post("/toggle_file_status", c.ToggleStatus)
	r.Delete("/delete_file/:id", c.Delete)
	r.Post("/clear_memory", c.ClearMemory)
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	files, err := c.documentService.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(dto.GetUploadedFilesResponse{Files: files})
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	// 1. Read the multipart file
	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Missing form field 'file'")
	}
	f, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
	}

	// 2. Store
	res, err := c.documentService.Upload(ctx.UserContext(), header.Filename, content)
	switch {
	case errors.Is(err, service.ErrUnsupportedContent):
		return fiber.NewError(fiber.StatusUnsupportedMediaType, "Could not decode file contents as UTF-8")
	case errors.Is(err, service.ErrEmptyContent):
		return fiber.NewError(fiber.StatusBadRequest, "File is empty or contains only whitespace")
	case err != nil:
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *documentController) ToggleStatus(ctx *fiber.Ctx) error {
	var req dto.ToggleFileStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	err := c.documentService.SetActive(ctx.UserContext(), req.FileId, *req.IsActive)
	if errors.Is(err, contract.ErrDocumentNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(dto.MessageResponse{Message: "File status updated"})
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	err := c.documentService.Delete(ctx.UserContext(), ctx.Params("id"))
	if errors.Is(err, contract.ErrDocumentNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}
	if err != nil {
		return err
	}

	return ctx.JSON(dto.MessageResponse{Message: "File deleted"})
}

func (c *documentController) ClearMemory(ctx *fiber.Ctx) error {
	if err := c.documentService.ClearMemory(ctx.UserContext()); err != nil {
		return err
	}
	return ctx.JSON(dto.MessageResponse{Message: "Memory cleared"})
}
