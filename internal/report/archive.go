package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArchiveContentType is the MIME type the archive is served with.
const ArchiveContentType = "application/zip"

// BuildArchive bundles the artifact files into an in-memory zip. Entries are
// named by base name only, so the archive unpacks flat.
// Parameters:
//   - files: paths of the files to bundle, in entry order.
// Returns:
//   - []byte: the complete zip archive.
//   - error: non-nil if a file cannot be read or written.
func BuildArchive(files []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, path := range files {
		if err := addFile(zw, path); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", filepath.Base(path), err)
	}
	return nil
}
