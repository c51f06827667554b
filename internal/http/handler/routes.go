package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"filestore/internal/http/middleware"
	"filestore/internal/model"
	"filestore/internal/service"
)

// fileResponse wraps a stored file with its derived download reference.
// Raw storage keys never cross the HTTP boundary.
type fileResponse struct {
	*model.StoredFile
	FileURL string `json:"file_url"`
}

func toFileResponse(f *model.StoredFile) fileResponse {
	return fileResponse{StoredFile: f, FileURL: "/api/files/" + f.ID}
}

func toFileResponses(files []model.StoredFile) []fileResponse {
	out := make([]fileResponse, 0, len(files))
	for i := range files {
		out = append(out, toFileResponse(&files[i]))
	}
	return out
}

// requesterFromCtx builds the service-level identity context from the
// values stored by middleware.Identity.
func requesterFromCtx(c *fiber.Ctx) service.Requester {
	r := service.Requester{}
	if v, ok := c.Locals(middleware.UserIDLocalKey).(string); ok {
		r.UserID = v
	}
	if v, ok := c.Locals(middleware.IsAdminLocalKey).(bool); ok {
		r.IsAdmin = v
	}
	return r
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, delegate to the service, shape the response.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService, kycSvc service.KycService) {
	// New health endpoint: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Backward-compatible simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := app.Group("/api")

	// Upload a file (multipart/form-data, field name: file)
	api.Post("/files", func(c *fiber.Ctx) error {
		requester := requesterFromCtx(c)
		if requester.UserID == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
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

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		category := model.FileCategory(c.FormValue("category", string(model.CategoryOther)))
		makePermanent, _ := strconv.ParseBool(c.FormValue("make_permanent", "false"))

		ownerID := c.FormValue("owner_id")
		if ownerID == "" {
			ownerID = requester.UserID
		}

		file, err := fileSvc.Upload(c.UserContext(), f, service.UploadInput{
			OwnerID:       ownerID,
			FileName:      fh.Filename,
			ContentType:   ct,
			Size:          fh.Size,
			Category:      category,
			Reference:     c.FormValue("reference"),
			Description:   c.FormValue("description"),
			MakePermanent: makePermanent,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toFileResponse(file))
	})

	// Download file content by ID
	api.Get("/files/:id", func(c *fiber.Ctx) error {
		content, err := fileSvc.GetContent(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, content.File.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+content.File.OriginalName+`"`)
		return c.SendStream(content.Body, int(content.File.Size))
	})

	// Promote a file to permanent storage
	api.Post("/files/:id/make-permanent", func(c *fiber.Ctx) error {
		requester := requesterFromCtx(c)
		if requester.UserID == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		file, err := fileSvc.MakePermanent(c.UserContext(), c.Params("id"), requester)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toFileResponse(file))
	})

	// Delete a file (owner or admin)
	api.Delete("/files/:id", func(c *fiber.Ctx) error {
		requester := requesterFromCtx(c)
		if requester.UserID == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		if err := fileSvc.Delete(c.UserContext(), c.Params("id"), requester); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// List a user's files with an optional category filter
	api.Get("/files/user/:userId", func(c *fiber.Ctx) error {
		files, err := fileSvc.ListByUser(c.UserContext(),
			c.Params("userId"),
			model.FileCategory(c.Query("category")),
			requesterFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toFileResponses(files))
	})

	// List files by free-text reference
	api.Get("/files/reference/:reference", func(c *fiber.Ctx) error {
		files, err := fileSvc.ListByReference(c.UserContext(), c.Params("reference"), requesterFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(toFileResponses(files))
	})

	// Start (or resume) the caller's verification case
	api.Post("/kyc/processes", func(c *fiber.Ctx) error {
		requester := requesterFromCtx(c)
		if requester.UserID == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		process, err := kycSvc.Start(c.UserContext(), requester.UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(process)
	})

	// Fetch a case by id or session token (unauthenticated continuation)
	api.Get("/kyc/processes/:idOrToken", func(c *fiber.Ctx) error {
		detail, err := kycSvc.Get(c.UserContext(), c.Params("idOrToken"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(detail)
	})

	// Attach an identity document to a case
	api.Post("/kyc/processes/:idOrToken/files", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		file, err := kycSvc.UploadDocument(c.UserContext(), f, service.KycUploadInput{
			IDOrToken:   c.Params("idOrToken"),
			FileName:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Category:    model.FileCategory(c.FormValue("category")),
			Requester:   requesterFromCtx(c),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toFileResponse(file))
	})

	// Record the terminal review decision (administrators only)
	api.Post("/kyc/processes/:id/verify", func(c *fiber.Ctx) error {
		var body struct {
			Approved bool   `json:"approved"`
			Comment  string `json:"comment"`
		}
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		process, err := kycSvc.Complete(c.UserContext(), c.Params("id"), body.Approved, body.Comment, requesterFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(process)
	})
}
