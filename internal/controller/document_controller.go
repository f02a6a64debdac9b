package controller

import (
	"io"

	"doc-qa-be/internal/pkg/serverutils"
	"doc-qa-be/internal/service"
	"doc-qa-be/pkg/ragerr"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
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
	h := r.Group("/document/v1")
	h.Post("upload", c.Upload)
	h.Get("", c.List)
	h.Get("stats", c.Stats)
	h.Get(":id/status", c.Status)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ragerr.DocumentProcessing("missing file in upload request")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to read uploaded file")
	}

	path, cleanup, err := c.documentService.StageUpload(fileHeader.Filename, data)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := c.documentService.Upload(ctx.Context(), path)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	res, err := c.documentService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	if err := c.documentService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *documentController) Status(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	res, err := c.documentService.Status(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get ingestion status", res))
}

func (c *documentController) Stats(ctx *fiber.Ctx) error {
	res, err := c.documentService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get store stats", res))
}
