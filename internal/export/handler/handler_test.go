package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rpscreen/internal/screening/models"
	"rpscreen/pkg/testutil"
)

type staticMatches []models.Match

func (s staticMatches) List(context.Context) []models.Match { return s }

func router(matches staticMatches, files []string) chi.Router {
	r := chi.NewRouter()
	New(matches, files, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestExportMatches(t *testing.T) {
	r := router(staticMatches{{CustomerID: 1, RestrictedPartyID: 2, MatchType: models.MatchTypeExact, Similarity: 1}}, nil)

	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodGet, "/api/matches/export", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "matches.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDownloadZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restricted_parties.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	rr := testutil.DoRequest(router(nil, []string{path, filepath.Join(dir, "customers.json")}),
		testutil.NewJSONRequest(t, http.MethodGet, "/download/zip", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/zip", rr.Header().Get("Content-Type"))
	assert.Len(t, rr.Header().Get(ChecksumHeader), 64)

	body := rr.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"restricted_parties.json", "manifest.json"}, names)
}

func TestDownloadZipUnreadableFileIsInternal(t *testing.T) {
	dir := t.TempDir()

	rr := testutil.DoRequest(router(nil, []string{dir}), testutil.NewJSONRequest(t, http.MethodGet, "/download/zip", nil))

	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}
