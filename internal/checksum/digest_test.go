package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	c := filepath.Join(dir, "c.csv")
	if err := os.WriteFile(a, []byte("same content"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("same content"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c, []byte("other content"), 0644); err != nil {
		t.Fatal(err)
	}

	da, err := FileDigest(a)
	if err != nil {
		t.Fatalf("FileDigest: %v", err)
	}
	db, _ := FileDigest(b)
	dc, _ := FileDigest(c)
	if da != db {
		t.Errorf("identical content produced different digests")
	}
	if da == dc {
		t.Errorf("different content produced the same digest")
	}

	if _, err := FileDigest(filepath.Join(dir, "missing.csv")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
