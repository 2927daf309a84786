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

	"talentdocs/internal/http/middleware"
	"talentdocs/internal/identity"
	"talentdocs/internal/model"
	"talentdocs/internal/repository"
	"talentdocs/internal/service"
	"talentdocs/internal/storage"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Document routes require an actor identity; health/docs routes do not.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	docs := app.Group("/documents", middleware.ActorID())
	docs.Get("/", ListDocuments(docSvc))
	docs.Post("/", UploadDocument(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Patch("/:id", UpdateDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
}

// HealthCheck reports readiness; it checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments handles GET /documents with filter and pagination query params.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		if et := c.Query("entity_type"); et != "" {
			if _, ok := model.ParseEntityType(et); !ok {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ENTITY_TYPE", "invalid entity_type")
			}
		}

		f := model.DocumentFilter{
			EntityType:   c.Query("entity_type"),
			EntityID:     c.Query("entity_id"),
			DocumentType: c.Query("document_type"),
			Status:       c.Query("status"),
			UploadedBy:   c.Query("uploaded_by"),
			Search:       c.Query("search"),
			Page:         page,
			Limit:        limit,
		}

		res, err := docSvc.List(c.UserContext(), actorFromCtx(c), f)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"data": res.Items,
			"pagination": fiber.Map{
				"page":  res.Page,
				"limit": res.Limit,
				"total": res.Total,
			},
		})
	}
}

// UploadDocument handles POST /documents (multipart/form-data).
// Required: one "file" part plus entity_type, entity_id, document_type
// fields. Optional: metadata as a JSON string.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityType, ok := model.ParseEntityType(c.FormValue("entity_type"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ENTITY_TYPE", "entity_type is required and must be valid")
		}
		entityID := c.FormValue("entity_id")
		if entityID == "" {
			return writeError(c, fiber.StatusBadRequest, "ENTITY_ID_REQUIRED", "entity_id is required")
		}
		documentType := c.FormValue("document_type")
		if documentType == "" {
			return writeError(c, fiber.StatusBadRequest, "DOCUMENT_TYPE_REQUIRED", "document_type is required")
		}

		var metadata map[string]any
		if raw := c.FormValue("metadata"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_METADATA", "metadata must be valid JSON")
			}
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := docSvc.Create(c.UserContext(), actorFromCtx(c), service.CreateDocumentInput{
			Reader:       f,
			FileName:     fh.Filename,
			DeclaredSize: fh.Size,
			EntityType:   entityType,
			EntityID:     entityID,
			DocumentType: documentType,
			Metadata:     metadata,
		})
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": doc})
	}
}

// GetDocument handles GET /documents/:id.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id, actorFromCtx(c))
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": doc})
	}
}

// UpdateDocument handles PATCH /documents/:id with a partial body
// restricted to document_type, metadata, processing_status and status.
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var upd model.DocumentUpdate
		if err := json.Unmarshal(c.Body(), &upd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "body must be valid JSON")
		}
		if upd.Status != nil && *upd.Status != model.StatusActive && *upd.Status != model.StatusDeleted {
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "status must be active or deleted")
		}

		doc, err := docSvc.Update(c.UserContext(), id, actorFromCtx(c), upd)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": doc})
	}
}

// DeleteDocument handles DELETE /documents/:id. Soft delete only; the
// stored file stays retrievable by its path.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id, actorFromCtx(c)); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// actorFromCtx extracts the actor id stored by middleware.ActorID.
func actorFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.ActorIDLocalKey).(string); ok {
		return v
	}
	return ""
}

// mapServiceError translates service/repository failures into the
// standardized error payload. "Not found" and "found but denied" are the
// same response so existence never leaks.
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFoundOrDenied):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, identity.ErrIdentityResolution):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unknown actor identity")
	case errors.Is(err, repository.ErrAuthorization):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "not allowed for this entity")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", "file exceeds the 10 MiB limit")
	case errors.Is(err, service.ErrUnsupportedFileType):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "file type not allowed")
	case errors.Is(err, service.ErrInvalidEntityType),
		errors.Is(err, service.ErrEntityIDRequired),
		errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, storage.ErrStorageWrite), errors.Is(err, storage.ErrStorageRead):
		return writeError(c, fiber.StatusBadGateway, "STORAGE_ERROR", "storage backend failure")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
