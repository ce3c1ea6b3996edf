package taskgraph

import (
	"path/filepath"
	"testing"

	"github.com/sofmeright/dockwright/src/config"
	"github.com/sofmeright/dockwright/src/project"
)

func testProject() *project.Meta {
	return &project.Meta{Name: "widget", Version: "1.2.3"}
}

func TestTasksForImage(t *testing.T) {
	img := config.ImageDescriptor{
		Name:      "webServer",
		DependsOn: []string{"assembleWeb"},
	}
	settings := config.DockerSettings{Pull: true, ScanStaging: true}

	tasks := TasksForImage(img, settings, testProject(), "build")
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	copyTask, buildTask, pushTask := tasks[0], tasks[1], tasks[2]

	if copyTask.Name != "dockerWebServerCopy" {
		t.Errorf("copy task name = %q", copyTask.Name)
	}
	if buildTask.Name != "dockerWebServerBuild" {
		t.Errorf("build task name = %q", buildTask.Name)
	}
	if pushTask.Name != "dockerWebServerPush" {
		t.Errorf("push task name = %q", pushTask.Name)
	}

	for _, task := range tasks {
		if task.Group != "docker" {
			t.Errorf("task %s group = %q, want docker", task.Name, task.Group)
		}
		if task.Description == "" {
			t.Errorf("task %s has no description", task.Name)
		}
	}
	if copyTask.Description != "Copy files for Docker image 'webServer'" {
		t.Errorf("copy description = %q", copyTask.Description)
	}

	// Dependency chain: copy ← declared deps, build ← copy, push ← build.
	if len(copyTask.DependsOn) != 1 || copyTask.DependsOn[0] != "assembleWeb" {
		t.Errorf("copy deps = %v", copyTask.DependsOn)
	}
	if len(buildTask.DependsOn) != 1 || buildTask.DependsOn[0] != copyTask.Name {
		t.Errorf("build deps = %v", buildTask.DependsOn)
	}
	if len(pushTask.DependsOn) != 1 || pushTask.DependsOn[0] != buildTask.Name {
		t.Errorf("push deps = %v", pushTask.DependsOn)
	}

	copySpec := copyTask.Spec.(CopySpec)
	if copySpec.Source != filepath.Join("src", "docker", "webServer") {
		t.Errorf("copy source = %q", copySpec.Source)
	}
	if copySpec.Dest != filepath.Join("build", "docker", "webServer") {
		t.Errorf("copy dest = %q", copySpec.Dest)
	}
	if _, ok := copySpec.Context["project"]; !ok {
		t.Error("copy context is missing the project binding")
	}

	buildSpec := buildTask.Spec.(BuildSpec)
	if buildSpec.InputDir != copySpec.Dest {
		t.Errorf("build input dir = %q, want %q", buildSpec.InputDir, copySpec.Dest)
	}
	if !buildSpec.Pull {
		t.Error("build spec should inherit pull from settings")
	}
	if !buildSpec.ScanStaging {
		t.Error("build spec should inherit scan_staging from settings")
	}
}

func TestTasksForImageDefaultsFromProject(t *testing.T) {
	img := config.ImageDescriptor{Name: "webServer"}
	tasks := TasksForImage(img, config.DockerSettings{}, testProject(), "build")

	buildSpec := tasks[1].Spec.(BuildSpec)
	if buildSpec.Tag != "widget:1.2.3" {
		t.Errorf("build tag = %q, want widget:1.2.3", buildSpec.Tag)
	}

	pushSpec := tasks[2].Spec.(PushSpec)
	if pushSpec.Image != "widget" || pushSpec.Tag != "1.2.3" {
		t.Errorf("push spec = %+v", pushSpec)
	}
}

func TestTasksForImageExplicitRepositoryAndTag(t *testing.T) {
	img := config.ImageDescriptor{
		Name:       "webServer",
		Repository: "acme/web",
		Tag:        "2.0",
	}
	tasks := TasksForImage(img, config.DockerSettings{}, testProject(), "build")

	buildSpec := tasks[1].Spec.(BuildSpec)
	if buildSpec.Tag != "acme/web:2.0" {
		t.Errorf("build tag = %q", buildSpec.Tag)
	}
	pushSpec := tasks[2].Spec.(PushSpec)
	if pushSpec.Image != "acme/web" || pushSpec.Tag != "2.0" {
		t.Errorf("push spec = %+v", pushSpec)
	}
}

type collectingRegistry struct {
	tasks []Task
}

func (r *collectingRegistry) Register(task Task) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func TestRegisterAll(t *testing.T) {
	reg := &collectingRegistry{}
	s := config.DockerSettings{
		Images: []config.ImageDescriptor{
			{Name: "webServer"},
			{Name: "db"},
		},
	}

	if err := RegisterAll(reg, s, testProject(), "build"); err != nil {
		t.Fatal(err)
	}

	if len(reg.tasks) != 6 {
		t.Fatalf("expected 3×2 tasks, got %d", len(reg.tasks))
	}

	// Declaration order, per-image chains, no cross-image leakage.
	wantNames := []string{
		"dockerWebServerCopy", "dockerWebServerBuild", "dockerWebServerPush",
		"dockerDbCopy", "dockerDbBuild", "dockerDbPush",
	}
	for i, want := range wantNames {
		if reg.tasks[i].Name != want {
			t.Errorf("task[%d] = %q, want %q", i, reg.tasks[i].Name, want)
		}
	}
	dbBuild := reg.tasks[4]
	if len(dbBuild.DependsOn) != 1 || dbBuild.DependsOn[0] != "dockerDbCopy" {
		t.Errorf("dockerDbBuild deps = %v", dbBuild.DependsOn)
	}
}
