// Package daemon holds the remote-daemon and registry-credential settings
// consumed by the docker runner. The settings are filled once from ambient
// environment variables and project properties before any task executes.
package daemon

import (
	"strings"

	"github.com/sofmeright/dockwright/src/config"
)

// Credentials are the registry login details.
type Credentials struct {
	Username string
	Password string
	Email    string
	URL      string
}

// Settings configure the connection to the docker daemon.
type Settings struct {
	// URL is the daemon endpoint. Empty means the local default socket.
	URL string

	// CertPath is the TLS certificate directory for the daemon connection.
	CertPath string

	// Credentials are the registry credentials, created on first Apply.
	Credentials *Credentials
}

// Apply copies ambient configuration into the settings:
//
//   - DOCKER_HOST becomes the daemon URL, with its tcp:// prefix rewritten
//     to https://
//   - DOCKER_CERT_PATH becomes the certificate directory
//   - docker.user / docker.password / docker.email / docker.url properties
//     become the registry credentials
//
// Nothing is validated and absent values are simply left unset. Apply is
// idempotent; re-applying the same inputs yields the same settings.
func (s *Settings) Apply(getenv func(string) string, props config.Properties) {
	if host := getenv("DOCKER_HOST"); host != "" {
		s.URL = strings.Replace(host, "tcp://", "https://", 1)
	}
	if path := getenv("DOCKER_CERT_PATH"); path != "" {
		s.CertPath = path
	}

	if s.Credentials == nil {
		s.Credentials = &Credentials{}
	}
	s.Credentials.Username = props.Get("docker.user")
	s.Credentials.Password = props.Get("docker.password")
	s.Credentials.Email = props.Get("docker.email")
	s.Credentials.URL = props.Get("docker.url")
}

// FromEnvironment builds fresh settings from the given environment and
// properties.
func FromEnvironment(getenv func(string) string, props config.Properties) Settings {
	var s Settings
	s.Apply(getenv, props)
	return s
}

// HasCredentials reports whether a registry login is configured.
func (s *Settings) HasCredentials() bool {
	return s.Credentials != nil && s.Credentials.Username != ""
}
