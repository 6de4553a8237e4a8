package export

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the archive entry describing the other entries.
const ManifestName = "manifest.json"

// Manifest lists the archived files with their SHA-256 digests.
type Manifest struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Files       map[string]string `json:"files"`
}

// DataArchive zips the files at paths under their base names, followed by a
// manifest. Paths that do not exist yet are skipped. It returns the archive
// and the hex SHA-256 of the archive bytes.
func DataArchive(paths []string, now time.Time) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	manifest := Manifest{GeneratedAt: now, Files: map[string]string{}}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", filepath.Base(p), err)
		}

		name := filepath.Base(p)
		if err := writeEntry(w, name, data, now); err != nil {
			return nil, "", err
		}
		sum := sha256.Sum256(data)
		manifest.Files[name] = hex.EncodeToString(sum[:])
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(w, ManifestName, manifestJSON, now); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close archive: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}

func writeEntry(w *zip.Writer, name string, data []byte, modified time.Time) error {
	f, err := w.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
