package serverutils

import (
	"errors"

	"doc-qa-be/pkg/ragerr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors returned by handlers into
// HTTP responses. RAG error kinds map onto status classes exhaustively
// so transport never inspects error strings.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var ragErr *ragerr.Error
		if errors.As(err, &ragErr) {
			return ctx.Status(statusForKind(ragErr.Kind)).JSON(ErrorResponse(ragErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}

func statusForKind(kind ragerr.Kind) int {
	switch kind {
	case ragerr.KindDocumentProcessing:
		return fiber.StatusBadRequest
	case ragerr.KindRetrieval:
		return fiber.StatusNotFound
	case ragerr.KindVectorStore, ragerr.KindLLM:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}
