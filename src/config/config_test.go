package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".dockwright.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Docker.Pull {
		t.Error("default pull should be true")
	}
	if len(cfg.Docker.Images) != 0 {
		t.Errorf("default images = %v", cfg.Docker.Images)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
docker:
  pull: false
  registry_url: registry.example.com
  scan_staging: true
  images:
    - name: webServer
      repository: acme/web
      tag: "2.0"
      files:
        - from: dist/web
        - from: templates
          expand: true
      depends_on: [assembleWeb]
    - name: db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	d := cfg.Docker
	if d.Pull {
		t.Error("pull should be false")
	}
	if d.RegistryURL != "registry.example.com" {
		t.Errorf("registry_url = %q", d.RegistryURL)
	}
	if !d.ScanStaging {
		t.Error("scan_staging should be true")
	}
	if len(d.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(d.Images))
	}

	web := d.Images[0]
	if web.Name != "webServer" || web.Repository != "acme/web" || web.Tag != "2.0" {
		t.Errorf("webServer = %+v", web)
	}
	if len(web.Files) != 2 || web.Files[0].From != "dist/web" || !web.Files[1].Expand {
		t.Errorf("webServer files = %+v", web.Files)
	}
	if len(web.DependsOn) != 1 || web.DependsOn[0] != "assembleWeb" {
		t.Errorf("webServer depends_on = %v", web.DependsOn)
	}

	// Unset collections are normalized to empty, not nil.
	db := d.Images[1]
	if db.Files == nil || db.DependsOn == nil {
		t.Error("db image collections should be initialized empty")
	}
}

func TestLoadRejectsDuplicateImageNames(t *testing.T) {
	path := writeConfig(t, `
docker:
  images:
    - name: webServer
    - name: webServer
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected duplicate name error")
	}
	if !strings.Contains(err.Error(), `duplicate image name "webServer"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	path := writeConfig(t, `
docker:
  images:
    - repository: acme/web
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("expected missing name error, got %v", err)
	}
}

func TestLoadRejectsInvalidImageName(t *testing.T) {
	path := writeConfig(t, `
docker:
  images:
    - name: Web-Server
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "not a valid identifier") {
		t.Errorf("expected identifier error, got %v", err)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	s := DockerSettings{
		Images: []ImageDescriptor{
			{Name: "webServer", DependsOn: []string{"assembleWeb"}, Files: []FileSpec{{From: "dist"}}},
		},
	}

	s.Normalize()
	s.Normalize()

	img := s.Images[0]
	if len(img.DependsOn) != 1 {
		t.Errorf("depends_on duplicated by normalization: %v", img.DependsOn)
	}
	if len(img.Files) != 1 {
		t.Errorf("files duplicated by normalization: %v", img.Files)
	}
}
