package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatal(err)
	}
	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return hash
}

func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	return repo, dir
}

func TestDetectOutsideRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "widget")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	m := Detect(dir)
	if m.Name != "widget" {
		t.Errorf("name = %q, want directory name", m.Name)
	}
	if m.Version != "0.0.0-dev" {
		t.Errorf("version = %q", m.Version)
	}
}

func TestDetectNameFromRemote(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, repo, dir, "README.md", "hi\n")

	_, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@example.com:acme/widget.git"},
	})
	if err != nil {
		t.Fatal(err)
	}

	m := Detect(dir)
	if m.Name != "widget" {
		t.Errorf("name = %q, want widget", m.Name)
	}
	if len(m.SHA) != 7 {
		t.Errorf("SHA = %q, want 7 chars", m.SHA)
	}
}

func TestDetectVersionFromTagAtHead(t *testing.T) {
	repo, dir := initRepo(t)
	hash := commitFile(t, repo, dir, "README.md", "hi\n")

	if _, err := repo.CreateTag("v1.2.0", hash, nil); err != nil {
		t.Fatal(err)
	}

	m := Detect(dir)
	if m.Version != "1.2.0" {
		t.Errorf("version = %q, want 1.2.0", m.Version)
	}
}

func TestDetectVersionPastTagGetsDevSuffix(t *testing.T) {
	repo, dir := initRepo(t)
	hash := commitFile(t, repo, dir, "README.md", "hi\n")
	if _, err := repo.CreateTag("v1.2.0", hash, nil); err != nil {
		t.Fatal(err)
	}
	commitFile(t, repo, dir, "more.txt", "more\n")

	m := Detect(dir)
	want := "1.2.0-dev+" + m.SHA
	if m.Version != want {
		t.Errorf("version = %q, want %q", m.Version, want)
	}
}

func TestDetectVersionNoTags(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, repo, dir, "README.md", "hi\n")

	m := Detect(dir)
	want := "0.0.0-dev+" + m.SHA
	if m.Version != want {
		t.Errorf("version = %q, want %q", m.Version, want)
	}
}

func TestRepoNameFromRemote(t *testing.T) {
	cases := map[string]string{
		"git@example.com:acme/widget.git":  "widget",
		"https://example.com/acme/widget":  "widget",
		"https://example.com/a/widget.git": "widget",
	}
	for remote, want := range cases {
		if got := repoNameFromRemote(remote); got != want {
			t.Errorf("repoNameFromRemote(%q) = %q, want %q", remote, got, want)
		}
	}
}
