// Package fileset provides a composable copy specification: an ordered set
// of source trees that can be merged and copied into a destination
// directory, optionally expanding template variables per file.
package fileset

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
)

// Tree is a single source directory within a file-set.
type Tree struct {
	Dir    string // source directory
	Expand bool   // expand template variables while copying
}

// FileSet is an ordered collection of source trees. The zero value from
// New is empty and valid.
type FileSet struct {
	trees []Tree
}

// New returns an empty file-set.
func New() *FileSet {
	return &FileSet{trees: []Tree{}}
}

// From appends a plain source tree and returns the file-set for chaining.
func (f *FileSet) From(dir string) *FileSet {
	f.trees = append(f.trees, Tree{Dir: dir})
	return f
}

// FromExpanded appends a source tree whose files are run through
// template-variable expansion when copied.
func (f *FileSet) FromExpanded(dir string) *FileSet {
	f.trees = append(f.trees, Tree{Dir: dir, Expand: true})
	return f
}

// With merges the trees of other file-sets, preserving order.
func (f *FileSet) With(others ...*FileSet) *FileSet {
	for _, o := range others {
		if o == nil {
			continue
		}
		f.trees = append(f.trees, o.trees...)
	}
	return f
}

// Trees returns the source trees in declaration order.
func (f *FileSet) Trees() []Tree {
	return f.trees
}

// Empty reports whether the file-set has no source trees.
func (f *FileSet) Empty() bool {
	return len(f.trees) == 0
}

// CopyInto copies every tree into dest. Later trees overwrite earlier ones
// on path collisions. Trees whose source directory does not exist
// contribute nothing. data is the template context for expanded trees
// (e.g. "project" bound to the project metadata).
func (f *FileSet) CopyInto(dest string, data map[string]any) error {
	for _, tree := range f.trees {
		if err := copyTree(tree, dest, data); err != nil {
			return err
		}
	}
	return nil
}

func copyTree(tree Tree, dest string, data map[string]any) error {
	info, err := os.Stat(tree.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // missing tree is an empty tree
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("fileset: %s is not a directory", tree.Dir)
	}

	return filepath.WalkDir(tree.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(tree.Dir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil // skip sockets, symlinks etc.
		}

		if tree.Expand {
			return expandFile(path, target, data)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func expandFile(src, dst string, data map[string]any) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	tmpl, err := template.New(filepath.Base(src)).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("fileset: expanding %s: %w", src, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if err := tmpl.Execute(out, data); err != nil {
		out.Close()
		return fmt.Errorf("fileset: expanding %s: %w", src, err)
	}
	return out.Close()
}
