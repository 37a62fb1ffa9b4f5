package outfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveNull(t *testing.T) {
	path, err := Resolve(Options{Null: true})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "" {
		t.Errorf("Resolve() path = %q, want empty", path)
	}
}

func TestResolveExplicitCollisionRequiresForceOrAppend(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "out.log")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(Options{Explicit: existing}); err == nil {
		t.Error("Resolve() with existing explicit path and no force/append, want error")
	}
	if path, err := Resolve(Options{Explicit: existing, Force: true}); err != nil || path != existing {
		t.Errorf("Resolve() with --force = (%q, %v), want (%q, nil)", path, err, existing)
	}
	if path, err := Resolve(Options{Explicit: existing, Append: true}); err != nil || path != existing {
		t.Errorf("Resolve() with --append = (%q, %v), want (%q, nil)", path, err, existing)
	}
}

func TestResolveAutoDerivesFromCommandBasename(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	path, err := Resolve(Options{Command: "/usr/bin/sh"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "sh.log" {
		t.Errorf("Resolve() path = %q, want %q", path, "sh.log")
	}
}

func TestResolveAutoRotatesOnCollision(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if err := os.WriteFile("sh.log", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := Resolve(Options{Command: "/usr/bin/sh"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if path != "sh-1.log" {
		t.Errorf("Resolve() path = %q, want %q", path, "sh-1.log")
	}
}
