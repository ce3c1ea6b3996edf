package taskgraph

import (
	"fmt"
	"path/filepath"

	"github.com/sofmeright/dockwright/src/config"
	"github.com/sofmeright/dockwright/src/fileset"
	"github.com/sofmeright/dockwright/src/project"
)

// TasksForImage materializes the three tasks for one image descriptor:
// copy its source files into the staging directory, build the image from
// there, and push the result. The returned slice is ordered copy, build,
// push, with the dependency chain wired between them.
func TasksForImage(img config.ImageDescriptor, settings config.DockerSettings, proj *project.Meta, buildDir string) []Task {
	repository := img.Repository
	if repository == "" {
		repository = proj.Name
	}
	tag := img.Tag
	if tag == "" {
		tag = proj.Version
	}

	staging := filepath.Join(buildDir, "docker", img.Name)

	files := fileset.New()
	for _, f := range img.Files {
		if f.Expand {
			files.FromExpanded(f.From)
		} else {
			files.From(f.From)
		}
	}

	copyTask := Task{
		Name:        CopyTaskName(img.Name),
		Description: fmt.Sprintf("Copy files for Docker image '%s'", img.Name),
		Group:       Group,
		DependsOn:   append([]string{}, img.DependsOn...),
		Spec: CopySpec{
			ImageName: img.Name,
			Source:    filepath.Join("src", "docker", img.Name),
			Dest:      staging,
			Files:     files,
			Context:   map[string]any{"project": proj},
		},
	}

	buildTask := Task{
		Name:        BuildTaskName(img.Name),
		Description: fmt.Sprintf("Build Docker image '%s'", img.Name),
		Group:       Group,
		DependsOn:   []string{copyTask.Name},
		Spec: BuildSpec{
			ImageName:   img.Name,
			InputDir:    staging,
			Tag:         repository + ":" + tag,
			Pull:        settings.Pull,
			ScanStaging: settings.ScanStaging,
		},
	}

	pushTask := Task{
		Name:        PushTaskName(img.Name),
		Description: fmt.Sprintf("Push Docker image '%s'", img.Name),
		Group:       Group,
		DependsOn:   []string{buildTask.Name},
		Spec: PushSpec{
			ImageName: img.Name,
			Image:     repository,
			Tag:       tag,
		},
	}

	return []Task{copyTask, buildTask, pushTask}
}

// RegisterAll materializes tasks for every declared image, in declaration
// order, and registers them with the host engine.
func RegisterAll(reg Registry, settings config.DockerSettings, proj *project.Meta, buildDir string) error {
	for _, img := range settings.Images {
		for _, task := range TasksForImage(img, settings, proj, buildDir) {
			if err := reg.Register(task); err != nil {
				return fmt.Errorf("image %q: %w", img.Name, err)
			}
		}
	}
	return nil
}
