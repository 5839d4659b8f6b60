package extern

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/qwas982/svm/value"
)

func TestPersister_WritesJSONAndPushesOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	p := NewPersister()
	push, pushed := pusher()

	// Stack convention: path on top (popped first), data beneath it.
	err := p.Invoke(popper(value.NewString(path), value.NewInt(42)), push)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*pushed) != 1 || (*pushed)[0].I != 1 {
		t.Errorf("expected [1], got %v", *pushed)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}
	var decoded float64
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded != 42 {
		t.Errorf("expected 42, got %v", decoded)
	}
}

func TestPersister_InvalidPathFails(t *testing.T) {
	p := NewPersister()
	push, pushed := pusher()

	err := p.Invoke(popper(value.NewString("/nonexistent-dir/out.json"), value.NewInt(1)), push)
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
	if len(*pushed) != 0 {
		t.Errorf("expected no push on failure, got %v", *pushed)
	}
}
