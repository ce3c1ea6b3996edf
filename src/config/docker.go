package config

import (
	"fmt"
	"regexp"
	"strings"
)

// DockerSettings holds the global docker configuration plus every declared
// image. It is populated once during the configuration phase and read-only
// afterwards.
type DockerSettings struct {
	// Pull makes every image build attempt to pull a newer base image first.
	Pull bool `yaml:"pull"`

	// RegistryURL is the target registry. Empty means the daemon default.
	RegistryURL string `yaml:"registry_url"`

	// ScanStaging runs a secret scan over the staged context directory
	// before each image build.
	ScanStaging bool `yaml:"scan_staging"`

	// Images lists the declared images. Order is declaration order.
	Images []ImageDescriptor `yaml:"images"`
}

// ImageDescriptor is the per-image build configuration record.
type ImageDescriptor struct {
	// Name identifies the image and derives its task names.
	// Required, unique across all images.
	Name string `yaml:"name"`

	// Repository is the target repository. Default: project name.
	Repository string `yaml:"repository"`

	// Tag is the target tag. Default: project version.
	Tag string `yaml:"tag"`

	// Files are extra source trees merged into the staging directory
	// on top of src/docker/<name>.
	Files []FileSpec `yaml:"files"`

	// DependsOn lists task names that must complete before this
	// image's files are copied.
	DependsOn []string `yaml:"depends_on"`
}

// FileSpec declares one source tree of an image's file-set.
type FileSpec struct {
	// From is the source directory, relative to the project root.
	From string `yaml:"from"`

	// Expand enables template-variable expansion while copying.
	Expand bool `yaml:"expand"`
}

// imageNameRe matches lower-camel identifiers: webServer, db, apiV2.
var imageNameRe = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)

// DefaultDockerSettings returns sensible defaults for docker builds.
func DefaultDockerSettings() DockerSettings {
	return DockerSettings{
		Pull:   true,
		Images: []ImageDescriptor{},
	}
}

// Normalize initializes empty collections on every image descriptor.
// Calling it more than once is a no-op: defaults apply exactly once,
// before user configuration is consumed.
func (s *DockerSettings) Normalize() {
	if s.Images == nil {
		s.Images = []ImageDescriptor{}
	}
	for i := range s.Images {
		img := &s.Images[i]
		if img.Files == nil {
			img.Files = []FileSpec{}
		}
		if img.DependsOn == nil {
			img.DependsOn = []string{}
		}
	}
}

// Validate checks structural invariants of the docker settings.
// Image names are validated eagerly so a duplicate surfaces here instead
// of as a task-name collision during registration.
func (s *DockerSettings) Validate() error {
	var errs []string

	seen := make(map[string]bool, len(s.Images))
	for i, img := range s.Images {
		ipath := fmt.Sprintf("docker.images[%d]", i)

		if img.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: name is required", ipath))
			continue
		}
		if !imageNameRe.MatchString(img.Name) {
			errs = append(errs, fmt.Sprintf("%s: name %q is not a valid identifier (must match [a-z][a-zA-Z0-9]*)", ipath, img.Name))
		}
		if seen[img.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate image name %q", ipath, img.Name))
		}
		seen[img.Name] = true

		for j, f := range img.Files {
			if f.From == "" {
				errs = append(errs, fmt.Sprintf("%s.files[%d]: from is required", ipath, j))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Image returns the descriptor with the given name, or nil.
func (s *DockerSettings) Image(name string) *ImageDescriptor {
	for i := range s.Images {
		if s.Images[i].Name == name {
			return &s.Images[i]
		}
	}
	return nil
}
