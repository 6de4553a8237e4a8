package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"rpscreen/internal/importer"
	dErrors "rpscreen/pkg/domain-errors"
	"rpscreen/pkg/platform/httputil"
	"rpscreen/pkg/requestcontext"
)

// FileField is the multipart field carrying the workbook.
const FileField = "file"

// Importer turns parsed sheets into records.
type Importer interface {
	ImportCustomers(ctx context.Context, t importer.Table) (*importer.Result, error)
	ImportRestrictedParties(ctx context.Context, t importer.Table) (*importer.Result, error)
}

// Handler accepts spreadsheet uploads.
type Handler struct {
	importer Importer
	maxBytes int64
	logger   *slog.Logger
}

// New constructs an upload handler. Request bodies larger than maxBytes are
// rejected.
func New(imp Importer, maxBytes int64, logger *slog.Logger) *Handler {
	return &Handler{importer: imp, maxBytes: maxBytes, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/upload-customers", h.HandleUploadCustomers)
	r.Post("/api/upload-restricted-parties", h.HandleUploadRestrictedParties)
}

func (h *Handler) HandleUploadCustomers(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, "customers", h.importer.ImportCustomers)
}

func (h *Handler) HandleUploadRestrictedParties(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, "restricted parties", h.importer.ImportRestrictedParties)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, kind string, run func(context.Context, importer.Table) (*importer.Result, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	table, err := h.readUpload(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "upload rejected",
			"request_id", requestID,
			"kind", kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	res, err := run(ctx, table)
	if err != nil {
		h.logger.WarnContext(ctx, "import failed",
			"request_id", requestID,
			"kind", kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newImportResponse(res))
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (importer.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile(FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return importer.Table{}, dErrors.New(dErrors.CodeBadRequest,
				fmt.Sprintf("File exceeds the %d byte upload limit", tooLarge.Limit))
		}
		return importer.Table{}, dErrors.New(dErrors.CodeBadRequest, "No file selected")
	}
	defer file.Close()

	if header.Filename == "" {
		return importer.Table{}, dErrors.New(dErrors.CodeBadRequest, "No file selected")
	}
	if strings.ToLower(filepath.Ext(header.Filename)) != ".xlsx" {
		return importer.Table{}, dErrors.New(dErrors.CodeBadRequest, "Invalid file type. Please upload .xlsx files")
	}

	table, err := importer.ReadXLSX(file)
	if err != nil {
		return importer.Table{}, dErrors.Wrap(err, dErrors.CodeBadRequest,
			"Error reading Excel file. Please ensure the file is a valid Excel file with a 'Name' column.")
	}
	return table, nil
}
