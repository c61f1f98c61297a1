package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/gridfs"
	"gridfs-manager/core/logger"
	"gridfs-manager/core/metadata"
	"gridfs-manager/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for buckets and files.
type Handler struct {
	service *gridfs.Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *gridfs.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the bucket routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/buckets", h.HandleListBuckets)

	group := app.Group("/buckets/:bucket/files")
	group.Post("/", h.HandleUpload)
	group.Post("/query", h.HandleQuery)
	group.Delete("/", h.HandleDelete)
	group.Get("/:id", h.HandleGetFile)
	group.Get("/:id/content", h.HandleDownload)
}

// QueryRequest is the body of a file query.
type QueryRequest struct {
	// Filter is a flat equality query, e.g. {"metadata.position": 1}.
	Filter map[string]any `json:"filter"`
	// IncludeBuffer attaches file content to every result.
	IncludeBuffer bool `json:"includeBuffer"`
	// Single returns the first match only, or null.
	Single bool `json:"single"`
}

// DeleteRequest is the body of a delete batch.
type DeleteRequest struct {
	IDs []string `json:"ids"`
}

// UploadResponse is returned by an upload, also when it stopped part way.
type UploadResponse struct {
	Files []gridfs.UploadResult `json:"files"`
	Error string                `json:"error,omitempty"`
}

// DeleteResponse is returned by a delete batch.
type DeleteResponse struct {
	gridfs.DeleteResult
	Error string `json:"error,omitempty"`
}

// HandleListBuckets returns the configured bucket names.
// @Summary List buckets
// @Description List the registered bucket names in configuration order.
// @Tags files
// @Produce json
// @Success 200 {object} map[string]any "Bucket count and names"
// @Router /buckets [get]
func (h *Handler) HandleListBuckets(c *fiber.Ctx) error {
	registry := h.service.Registry()
	return c.JSON(fiber.Map{
		"total":   registry.Total(),
		"buckets": registry.Keys(),
	})
}

// HandleUpload stores the uploaded files in a bucket.
// @Summary Upload files
// @Description Upload one or more files. Every file receives its own copy of the metadata.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param bucket path string true "Bucket name"
// @Param file formData file true "File content (repeatable)"
// @Param metadata formData string false "Flat JSON object of metadata properties"
// @Success 201 {object} UploadResponse "Stored files"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Bucket not found"
// @Failure 409 {object} UploadResponse "Unique index violation"
// @Failure 502 {object} UploadResponse "Storage failure"
// @Router /buckets/{bucket}/files [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	l := logger.WithRayID(h.logger, c).With(zap.String("bucket", bucket))

	form, err := c.MultipartForm()
	if err != nil {
		return h.fail(c, l, fmt.Errorf("%w: multipart form expected: %v", gridfs.ErrInvalidArgument, err))
	}

	var md metadata.Metadata
	if raw := form.Value["metadata"]; len(raw) > 0 && raw[0] != "" {
		if err := json.Unmarshal([]byte(raw[0]), &md); err != nil {
			return h.fail(c, l, fmt.Errorf("%w: metadata: %v", gridfs.ErrInvalidArgument, err))
		}
	}

	uploads, closeAll, err := openParts(form.File["file"])
	defer closeAll()
	if err != nil {
		return h.fail(c, l, err)
	}

	results, err := h.service.Upload(c.UserContext(), bucket, uploads, md)
	if err != nil {
		if results == nil {
			return h.fail(c, l, err)
		}
		l.Error("Upload stopped", zap.Int("committed", len(results)), zap.Error(err))
		return c.Status(statusFor(err)).JSON(UploadResponse{Files: results, Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(UploadResponse{Files: results})
}

func openParts(headers []*multipart.FileHeader) ([]gridfs.UploadFile, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]gridfs.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("%w: read part %q: %v", gridfs.ErrInvalidArgument, fh.Filename, err)
		}
		opened = append(opened, f)
		uploads = append(uploads, gridfs.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Content:     f,
		})
	}
	return uploads, closeAll, nil
}

// HandleQuery fetches files matching a filter.
// @Summary Query files
// @Description Fetch files matching a flat equality filter. Keys naming identifiers accept hex strings.
// @Tags files
// @Accept json
// @Produce json
// @Param bucket path string true "Bucket name"
// @Param query body QueryRequest true "Query"
// @Success 200 {array} gridfs.FileDescriptor "Matching files, or one file (possibly null) when single is set"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 404 {object} map[string]string "Bucket not found"
// @Router /buckets/{bucket}/files/query [post]
func (h *Handler) HandleQuery(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	l := logger.WithRayID(h.logger, c).With(zap.String("bucket", bucket))

	var req QueryRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return h.fail(c, l, fmt.Errorf("%w: query body: %v", gridfs.ErrInvalidArgument, err))
		}
	}

	opts := gridfs.FetchOptions{Filter: engine.Filter(req.Filter), IncludeBuffer: req.IncludeBuffer}
	if req.Single {
		file, err := h.service.FetchOne(c.UserContext(), bucket, opts)
		if err != nil {
			return h.fail(c, l, err)
		}
		return c.JSON(file)
	}

	found, err := h.service.FetchMany(c.UserContext(), bucket, opts)
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(found)
}

// HandleGetFile returns one file descriptor.
// @Summary Get file
// @Description Get the descriptor of one file, optionally with its content.
// @Tags files
// @Produce json
// @Param bucket path string true "Bucket name"
// @Param id path string true "File id (24 hex characters)"
// @Param buffer query bool false "Attach file content"
// @Success 200 {object} gridfs.FileDescriptor "File"
// @Failure 400 {object} map[string]string "Malformed id"
// @Failure 404 {object} map[string]string "Bucket or file not found"
// @Router /buckets/{bucket}/files/{id} [get]
func (h *Handler) HandleGetFile(c *fiber.Ctx) error {
	bucket, id := c.Params("bucket"), c.Params("id")
	l := logger.WithRayID(h.logger, c).With(zap.String("bucket", bucket))

	file, err := h.service.FetchOne(c.UserContext(), bucket, gridfs.FetchOptions{
		Filter:        engine.Filter{engine.FieldID: id},
		IncludeBuffer: utils.ToBool(c.Query("buffer")),
	})
	if err != nil {
		return h.fail(c, l, err)
	}
	if file == nil {
		return h.fail(c, l, fmt.Errorf("%w: file %s in bucket %q", gridfs.ErrNotFound, id, bucket))
	}
	return c.JSON(file)
}

// HandleDownload streams the content of one file.
// @Summary Download file
// @Description Stream the raw content of one file with its recorded mimetype.
// @Tags files
// @Produce octet-stream
// @Param bucket path string true "Bucket name"
// @Param id path string true "File id (24 hex characters)"
// @Success 200 {file} file "Content"
// @Failure 404 {object} map[string]string "Bucket or file not found"
// @Router /buckets/{bucket}/files/{id}/content [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	bucket, id := c.Params("bucket"), c.Params("id")
	l := logger.WithRayID(h.logger, c).With(zap.String("bucket", bucket))

	file, rc, err := h.service.Download(c.UserContext(), bucket, id)
	if err != nil {
		return h.fail(c, l, err)
	}

	mimeType, ok := file.Metadata.MimeType()
	if !ok {
		mimeType = metadata.DefaultMimeType
	}
	c.Set(fiber.HeaderContentType, mimeType)
	c.Set(fiber.HeaderContentDisposition, "inline; filename="+strconv.Quote(file.Filename))

	// The reader is closed once the body has been written.
	return c.SendStream(rc, int(file.Length))
}

// HandleDelete removes files from a bucket in the given order.
// @Summary Delete files
// @Description Delete files in order, stopping at the first failure.
// @Tags files
// @Accept json
// @Produce json
// @Param bucket path string true "Bucket name"
// @Param ids body DeleteRequest true "File ids"
// @Success 200 {object} DeleteResponse "Deleted ids"
// @Failure 400 {object} DeleteResponse "Malformed id"
// @Failure 404 {object} map[string]string "Bucket not found"
// @Failure 502 {object} DeleteResponse "Storage failure"
// @Router /buckets/{bucket}/files [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	l := logger.WithRayID(h.logger, c).With(zap.String("bucket", bucket))

	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, l, fmt.Errorf("%w: delete body: %v", gridfs.ErrInvalidArgument, err))
	}

	result, err := h.service.Delete(c.UserContext(), bucket, req.IDs)
	if err != nil {
		if errors.Is(err, gridfs.ErrNotFound) {
			return h.fail(c, l, err)
		}
		l.Error("Delete stopped", zap.Strings("deleted", result.DeletedIDs), zap.String("failed", result.FailedID), zap.Error(err))
		return c.Status(statusFor(err)).JSON(DeleteResponse{DeleteResult: result, Error: err.Error()})
	}
	return c.JSON(DeleteResponse{DeleteResult: result})
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error("Request failed", zap.Error(err))
	} else {
		l.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gridfs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, gridfs.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, gridfs.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, gridfs.ErrStorageIO):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
