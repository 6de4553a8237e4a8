package export

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	records "rpscreen/internal/records/models"
	"rpscreen/internal/screening/models"
)

var exportedAt = time.Date(2025, 6, 3, 10, 15, 0, 0, time.UTC)

func TestMatchesWorkbook(t *testing.T) {
	cleared := "cleared"
	buf, err := MatchesWorkbook([]models.Match{
		{
			Customer:          records.Customer{ID: 4, Name: "Acme Corp"},
			RestrictedParty:   records.RestrictedParty{ID: 7, Name: "ACME CORP", Source: "OFAC"},
			CustomerID:        4,
			RestrictedPartyID: 7,
			Similarity:        1,
			MatchType:         models.MatchTypeExact,
			HoldType:          &cleared,
			MatchDate:         exportedAt,
		},
		{
			Customer:          records.Customer{ID: 5, Name: "Globex"},
			RestrictedParty:   records.RestrictedParty{ID: 7, Name: "ACME CORP"},
			CustomerID:        5,
			RestrictedPartyID: 7,
			Similarity:        0.375,
			MatchType:         models.MatchTypeSimilar,
			MatchDate:         exportedAt,
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(matchesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Customer ID", rows[0][0])
	assert.Equal(t, []string{"4", "Acme Corp", "7", "ACME CORP", "", "OFAC", "1", "exact", "cleared", "", "2025-06-03 10:15:00"}, rows[1])
	assert.Equal(t, "0.375", rows[2][6])
	assert.Equal(t, "similar", rows[2][7])
}

func TestMatchesWorkbookWithNoMatchesHasHeaderOnly(t *testing.T) {
	buf, err := MatchesWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(matchesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDataArchive(t *testing.T) {
	dir := t.TempDir()
	customers := []byte(`[{"id": 1, "name": "Acme"}]`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.json"), customers, 0o644))

	data, checksum, err := DataArchive([]string{
		filepath.Join(dir, "customers.json"),
		filepath.Join(dir, "matches.json"),
	}, exportedAt)
	require.NoError(t, err)

	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), checksum)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	entries := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = body
	}

	require.Len(t, entries, 2, "missing files are skipped")
	assert.Equal(t, customers, entries["customers.json"])

	var manifest Manifest
	require.NoError(t, json.Unmarshal(entries[ManifestName], &manifest))
	fileSum := sha256.Sum256(customers)
	assert.Equal(t, map[string]string{"customers.json": hex.EncodeToString(fileSum[:])}, manifest.Files)
	assert.True(t, exportedAt.Equal(manifest.GeneratedAt))
}
