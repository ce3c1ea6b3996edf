// Package taskgraph declares the docker task model and the rule that
// materializes tasks from image descriptors. Nothing here executes work:
// tasks are registered with a host engine that schedules them by
// dependency order.
package taskgraph

import "github.com/sofmeright/dockwright/src/fileset"

// Group is the task group every docker task is filed under.
const Group = "docker"

// Spec is the typed payload of a task. Exactly one of the three concrete
// spec types backs each task.
type Spec interface {
	spec()
}

// CopySpec stages an image's source files into the build directory.
type CopySpec struct {
	ImageName string
	Source    string           // primary source tree, expanded while copying
	Dest      string           // staging directory
	Files     *fileset.FileSet // extra trees merged on top of Source
	Context   map[string]any   // template context ("project" is always bound)
}

// BuildSpec builds a container image from a staged directory.
type BuildSpec struct {
	ImageName   string
	InputDir    string
	Tag         string // full reference, "<repository>:<tag>"
	Pull        bool
	ScanStaging bool // secret-scan InputDir before building
}

// PushSpec pushes a built image to the registry.
type PushSpec struct {
	ImageName string
	Image     string // repository
	Tag       string
}

func (CopySpec) spec()  {}
func (BuildSpec) spec() {}
func (PushSpec) spec()  {}

// Task is a named, schedulable unit of work with declared dependencies.
type Task struct {
	Name        string
	Description string
	Group       string
	DependsOn   []string
	Spec        Spec
}

// Registry is the host engine's task registry. Register returns an error
// for duplicate task names.
type Registry interface {
	Register(task Task) error
}
