package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docetl/internal/model"
	"docetl/internal/service"
)

// Response bodies of the intake endpoint.
const (
	msgProcessed    = "Processed successfully"
	msgFileNotFound = "File not found"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil when the processing log is disabled; the /documents routes are
// then left out and /health only reports liveness.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})

	var pinger Pinger
	if db != nil {
		pinger = db
	}
	app.Get("/health", HealthCheck(pinger))
	app.Get("/healthz", LivenessProbe())

	app.Post("/process", ProcessDocument(docSvc))

	if db != nil {
		app.Get("/documents", ListDocuments(docSvc))
		app.Get("/documents/:id", GetDocument(docSvc))
	}
}

// HealthCheck pings the database when one is configured.
func HealthCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ProcessDocument runs one file through the intake pipeline.
//
//	@Summary	Recognize text in a file and store it as a JSON artifact
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.IntakeRequest	true	"file to process"
//	@Success	200		{object}	map[string]string
//	@Failure	400		{object}	intakeError
//	@Failure	500		{object}	intakeError
//	@Header		400,500	{string}	X-Error-Code	"machine-readable error code"
//	@Router		/process [post]
func ProcessDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.IntakeRequest
		// An empty body is treated like {} and fails path validation below
		if body := c.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return writeIntakeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}

		if _, err := docSvc.Process(c.UserContext(), req); err != nil {
			switch {
			case errors.Is(err, service.ErrFileNotFound):
				return writeIntakeError(c, fiber.StatusBadRequest, "FILE_NOT_FOUND", msgFileNotFound)
			case errors.Is(err, service.ErrNameRequired):
				return writeIntakeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "originalName is required")
			case errors.Is(err, service.ErrRecognition):
				return writeIntakeError(c, fiber.StatusInternalServerError, "OCR_FAILED", "internal server error")
			case errors.Is(err, service.ErrPersist):
				return writeIntakeError(c, fiber.StatusInternalServerError, "PERSIST_FAILED", "internal server error")
			default:
				return writeIntakeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": msgProcessed})
	}
}

// ListDocuments pages through the processing log.
//
//	@Summary	List processed documents
//	@Produce	json
//	@Param		limit	query		int	false	"page size"	default(10)
//	@Param		offset	query		int	false	"offset"	default(0)
//	@Success	200		{object}	service.DocumentListResult
//	@Router		/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := docSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetDocument returns one processing log entry.
//
//	@Summary	Get a processed document
//	@Produce	json
//	@Param		id	path		string	true	"document id"
//	@Success	200	{object}	model.ProcessedDocument
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}
