package controller

import (
	"doc-qa-be/internal/dto"
	"doc-qa-be/internal/pkg/serverutils"
	"doc-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConfigController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type configController struct {
	configService service.IConfigService
}

func NewConfigController(configService service.IConfigService) IConfigController {
	return &configController{
		configService: configService,
	}
}

func (c *configController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/config/v1")
	h.Get("", c.Get)
	h.Put("", c.Update)
}

func (c *configController) Get(ctx *fiber.Ctx) error {
	res := c.configService.Get(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success get configuration", res))
}

func (c *configController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateConfigRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.configService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update configuration", res))
}
