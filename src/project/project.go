// Package project resolves project-level metadata (name, version) from the
// enclosing git repository. Images that leave repository or tag unset fall
// back to these values.
package project

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Meta holds the resolved project context.
type Meta struct {
	Name    string // repo name (last path component of the origin remote)
	Version string // "1.2.3", or "1.2.3-dev+abc1234" when HEAD is past the tag
	SHA     string // short HEAD SHA, empty outside a git repository
}

// Detect resolves project metadata from the repository at rootDir.
// Outside a git repository it falls back to the directory name and a dev
// version instead of failing: metadata lookups are optional everywhere.
func Detect(rootDir string) *Meta {
	m := &Meta{
		Name:    dirName(rootDir),
		Version: "0.0.0-dev",
	}

	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return m
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			if name := repoNameFromRemote(urls[0]); name != "" {
				m.Name = name
			}
		}
	}

	head, err := repo.Head()
	if err != nil {
		return m
	}
	m.SHA = head.Hash().String()[:7]
	m.Version = detectVersion(repo, head.Hash(), m.SHA)

	return m
}

// detectVersion resolves the version from semver tags. A tag pointing at
// HEAD wins (clean release); otherwise the highest tag gets a dev suffix.
func detectVersion(repo *git.Repository, head plumbing.Hash, sha string) string {
	iter, err := repo.Tags()
	if err != nil {
		return fmt.Sprintf("0.0.0-dev+%s", sha)
	}

	var all semver.Collection
	var atHead *semver.Version

	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		v, err := semver.NewVersion(strings.TrimPrefix(ref.Name().Short(), "v"))
		if err != nil {
			return nil // non-semver tag
		}

		target := ref.Hash()
		if tag, err := repo.TagObject(ref.Hash()); err == nil {
			target = tag.Target // annotated tag
		}

		all = append(all, v)
		if target == head {
			if atHead == nil || v.GreaterThan(atHead) {
				atHead = v
			}
		}
		return nil
	})

	if atHead != nil {
		return atHead.String()
	}
	if len(all) == 0 {
		return fmt.Sprintf("0.0.0-dev+%s", sha)
	}

	sort.Sort(all)
	return fmt.Sprintf("%s-dev+%s", all[len(all)-1], sha)
}

// repoNameFromRemote extracts the repository name from a git remote URL.
// Handles SSH (git@host:org/repo.git) and HTTPS (https://host/org/repo.git).
func repoNameFromRemote(remote string) string {
	remote = strings.TrimSuffix(remote, ".git")

	// SSH: git@host:org/repo
	if idx := strings.LastIndex(remote, ":"); idx != -1 && !strings.Contains(remote, "://") {
		remote = remote[idx+1:]
	}

	if idx := strings.LastIndex(remote, "/"); idx != -1 {
		return remote[idx+1:]
	}
	return remote
}

func dirName(rootDir string) string {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return filepath.Base(rootDir)
	}
	return filepath.Base(abs)
}
