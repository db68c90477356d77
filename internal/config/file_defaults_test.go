package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsMissingFileReturnsAutoColor(t *testing.T) {
	dir := t.TempDir()
	fd, found, err := LoadDefaults(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("found should be false when d.yaml does not exist")
	}
	if fd.Color != "auto" {
		t.Errorf("Color = %q, want auto", fd.Color)
	}
}

func TestLoadDefaultsParsesYAML(t *testing.T) {
	dir := t.TempDir()
	content := "locators: true\ncolor: always\n"
	if err := os.WriteFile(filepath.Join(dir, "d.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	fd, found, err := LoadDefaults(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("found should be true when d.yaml exists")
	}
	if !fd.Locators || fd.Color != "always" {
		t.Errorf("fd = %+v, want Locators=true Color=always", fd)
	}
}

func TestLoadDefaultsDefaultsColorWhenOmitted(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "d.yaml"), []byte("locators: true\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	fd, _, err := LoadDefaults(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fd.Color != "auto" {
		t.Errorf("Color = %q, want auto when omitted", fd.Color)
	}
}

func TestLoadDefaultsMalformedYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "d.yaml"), []byte("locators: [this is not a bool\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, _, err := LoadDefaults(dir); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}
