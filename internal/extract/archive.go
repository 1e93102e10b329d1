package extract

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ArchiveProcessed moves fully processed extract files into archiveDir,
// prefixed with the run date. Called only after a successful run; a failed
// run leaves inputs in place for re-run.
func ArchiveProcessed(files []ExtractFile, archiveDir string, runDate time.Time) error {
	if len(files) == 0 {
		return nil
	}
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("create archive dir %s: %w", archiveDir, err)
	}
	stamp := runDate.Format("20060102")
	for _, f := range files {
		dst := filepath.Join(archiveDir, fmt.Sprintf("%s_%s", stamp, f.Name))
		if err := moveFile(f.Path, dst); err != nil {
			return fmt.Errorf("archive %s: %w", f.Name, err)
		}
		log.Printf("[AUDIT] archived %s -> %s", f.Name, dst)
	}
	return nil
}

// moveFile renames, falling back to copy+remove when the archive dir is on
// another filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
