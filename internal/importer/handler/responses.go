package handler

import "rpscreen/internal/importer"

// ImportResponse is returned by both upload endpoints.
type ImportResponse struct {
	Success       bool     `json:"success"`
	ImportedCount int      `json:"imported_count"`
	Warning       string   `json:"warning,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

func newImportResponse(res *importer.Result) ImportResponse {
	return ImportResponse{
		Success:       true,
		ImportedCount: res.Imported,
		Warning:       res.Warning,
		Errors:        res.Errors,
	}
}
