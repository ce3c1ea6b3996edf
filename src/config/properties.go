package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultPropertiesFile = "dockwright.properties.toml"

// Properties are project-level key/value pairs, addressed by dotted keys
// (e.g. "docker.user"). They carry credentials and other values that do not
// belong in the checked-in configuration file.
type Properties map[string]string

// LoadProperties reads properties from a TOML file. Nested tables are
// flattened into dotted keys, so
//
//	[docker]
//	user = "jane"
//
// becomes "docker.user" = "jane". If path is empty, the default file is
// tried. A missing file yields empty properties, not an error.
func LoadProperties(path string) (Properties, error) {
	if path == "" {
		path = defaultPropertiesFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Properties{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	props := Properties{}
	flatten("", raw, props)
	return props, nil
}

// Get returns the value for a dotted key, or "" when unset.
// Absent properties are not an error anywhere in dockwright.
func (p Properties) Get(key string) string {
	return p[key]
}

// Keys returns all property keys, sorted.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithEnv overlays environment variables onto the properties. A dotted key
// maps to an upper-snake variable: "docker.user" → DOCKER_USER. Environment
// values win over file values.
func (p Properties) WithEnv(getenv func(string) string) Properties {
	merged := Properties{}
	for k, v := range p {
		merged[k] = v
	}
	for _, key := range knownPropertyKeys {
		if v := getenv(envName(key)); v != "" {
			merged[key] = v
		}
	}
	return merged
}

// knownPropertyKeys are the properties consulted by the environment bridge.
var knownPropertyKeys = []string{
	"docker.user",
	"docker.password",
	"docker.email",
	"docker.url",
}

func envName(key string) string {
	key = strings.ReplaceAll(key, ".", "_")
	return strings.ToUpper(key)
}

func flatten(prefix string, value any, out Properties) {
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}
