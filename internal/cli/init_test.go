package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/ppiankov/protectwatch/internal/catalog"
)

func TestRunInit_UserMode(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	catalogPath = ""
	initForce = false

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".protectwatch", "catalog.yaml"))
	if err != nil {
		t.Fatalf("catalog.yaml not created: %v", err)
	}
	if !bytes.Equal(data, catalog.DefaultYAML()) {
		t.Error("catalog.yaml does not match the built-in catalog")
	}
}

func TestRunInit_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")
	catalogPath = path
	initForce = false
	t.Cleanup(func() { catalogPath = "" })

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}
	if _, err := catalog.Load(path); err != nil {
		t.Errorf("written catalog does not load: %v", err)
	}
}

func TestRunInit_NoOverwriteWithoutForce(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ".protectwatch")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}

	sentinel := "# sentinel content\n"
	path := filepath.Join(configDir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(sentinel), 0o644); err != nil {
		t.Fatal(err)
	}

	catalogPath = ""
	initForce = false

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != sentinel {
		t.Error("catalog.yaml was overwritten without --force")
	}
}

func TestRunInit_ForceOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ".protectwatch")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}

	sentinel := "# sentinel content\n"
	path := filepath.Join(configDir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(sentinel), 0o644); err != nil {
		t.Fatal(err)
	}

	catalogPath = ""
	initForce = true
	t.Cleanup(func() { initForce = false })

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) == sentinel {
		t.Error("catalog.yaml was not overwritten with --force")
	}
}

func TestDefaultCatalogNamesRealCommands(t *testing.T) {
	refs := regexp.MustCompile(`\(protectwatch ([a-z-]+)`).FindAllStringSubmatch(string(catalog.DefaultYAML()), -1)
	if len(refs) == 0 {
		t.Fatal("default catalog no longer mentions a command")
	}
	for _, ref := range refs {
		cmd, _, err := rootCmd.Find([]string{ref[1]})
		if err != nil || cmd == rootCmd {
			t.Errorf("default catalog mentions unknown command %q", ref[0])
		}
	}
}
