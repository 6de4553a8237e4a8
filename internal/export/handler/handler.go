package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rpscreen/internal/export"
	"rpscreen/internal/screening/models"
	dErrors "rpscreen/pkg/domain-errors"
	"rpscreen/pkg/platform/httputil"
	"rpscreen/pkg/requestcontext"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ChecksumHeader  = "X-Checksum-SHA256"
)

// Matches supplies the match list to export.
type Matches interface {
	List(ctx context.Context) []models.Match
}

// Handler serves downloads.
type Handler struct {
	matches Matches
	files   []string
	logger  *slog.Logger
}

// New constructs a download handler. files are the data files packed by the
// ZIP download.
func New(matches Matches, files []string, logger *slog.Logger) *Handler {
	return &Handler{matches: matches, files: files, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/matches/export", h.HandleExportMatches)
	r.Get("/download/zip", h.HandleDownloadZip)
}

func (h *Handler) HandleExportMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	buf, err := export.MatchesWorkbook(h.matches.List(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to build matches workbook", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=matches.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) HandleDownloadZip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, checksum, err := export.DataArchive(h.files, requestcontext.Now(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to build data archive", err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=customer_screening_data.zip")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set(ChecksumHeader, checksum)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, msg))
}
