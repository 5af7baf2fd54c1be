package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "out.csv")
	if err := SafeWriteFile(p, []byte("a,b\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a,b\n" {
		t.Fatalf("unexpected content %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestResolvePathAndTableName(t *testing.T) {
	if got := ResolvePath("/r", "data/x.csv"); got != filepath.Join("/r", "data/x.csv") {
		t.Fatalf("relative: %s", got)
	}
	if got := ResolvePath("/r", "/abs.csv"); got != "/abs.csv" {
		t.Fatalf("absolute: %s", got)
	}
	if got := ResolvePath("/r", "-"); got != "-" {
		t.Fatalf("stdout marker: %s", got)
	}
	if got := TableName("/tmp/scores.final.csv"); got != "scores.final" {
		t.Fatalf("table name: %s", got)
	}
}
