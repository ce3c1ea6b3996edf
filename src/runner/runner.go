// Package runner executes docker task specs: staging copies, image
// builds, and pushes. It is the Executor plugged into the host engine.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sofmeright/dockwright/src/dockercli"
	"github.com/sofmeright/dockwright/src/fileset"
	"github.com/sofmeright/dockwright/src/scan"
	"github.com/sofmeright/dockwright/src/taskgraph"
)

// Runner executes tasks against a project root and a docker client.
type Runner struct {
	Docker  *dockercli.Client
	RootDir string
	DryRun  bool
	Verbose bool
	Out     io.Writer

	scanner *scan.Scanner
}

// New creates a runner.
func New(docker *dockercli.Client, rootDir string, dryRun, verbose bool) *Runner {
	return &Runner{
		Docker:  docker,
		RootDir: rootDir,
		DryRun:  dryRun,
		Verbose: verbose,
		Out:     os.Stdout,
	}
}

// Execute dispatches a task to its spec handler.
func (r *Runner) Execute(ctx context.Context, task taskgraph.Task) error {
	switch spec := task.Spec.(type) {
	case taskgraph.CopySpec:
		return r.copy(spec)
	case taskgraph.BuildSpec:
		return r.build(ctx, spec)
	case taskgraph.PushSpec:
		return r.push(ctx, spec)
	default:
		return fmt.Errorf("runner: task %q has unsupported spec type %T", task.Name, task.Spec)
	}
}

// copy stages the image's files: the conventional source tree with
// template expansion, then the extra file-set trees on top.
func (r *Runner) copy(spec taskgraph.CopySpec) error {
	source := r.resolve(spec.Source)
	dest := r.resolve(spec.Dest)

	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source directory %s does not exist", spec.Source)
		}
		return err
	}

	if r.DryRun {
		fmt.Fprintf(r.Out, "    │ would copy %s → %s\n", spec.Source, spec.Dest)
		return nil
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	files := fileset.New().FromExpanded(source)
	for _, tree := range spec.Files.Trees() {
		dir := r.resolve(tree.Dir)
		if tree.Expand {
			files.FromExpanded(dir)
		} else {
			files.From(dir)
		}
	}

	return files.CopyInto(dest, spec.Context)
}

func (r *Runner) build(ctx context.Context, spec taskgraph.BuildSpec) error {
	inputDir := r.resolve(spec.InputDir)

	if spec.ScanStaging && !r.DryRun {
		if err := r.scanStaging(inputDir); err != nil {
			return err
		}
	}

	if r.DryRun {
		fmt.Fprintf(r.Out, "    │ would build %s from %s (pull=%t)\n", spec.Tag, spec.InputDir, spec.Pull)
		return nil
	}

	return r.Docker.Build(ctx, inputDir, spec.Tag, spec.Pull)
}

func (r *Runner) push(ctx context.Context, spec taskgraph.PushSpec) error {
	if r.DryRun {
		fmt.Fprintf(r.Out, "    │ would push %s:%s\n", spec.Image, spec.Tag)
		return nil
	}
	return r.Docker.Push(ctx, spec.Image, spec.Tag)
}

func (r *Runner) scanStaging(dir string) error {
	if r.scanner == nil {
		s, err := scan.NewScanner()
		if err != nil {
			return err
		}
		r.scanner = s
	}

	findings, err := r.scanner.Dir(dir)
	if err != nil {
		return fmt.Errorf("scanning staging directory: %w", err)
	}
	if len(findings) > 0 {
		return fmt.Errorf("secrets detected in staging directory, refusing to build:\n%s", scan.Summarize(findings))
	}
	return nil
}

func (r *Runner) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.RootDir, path)
}
