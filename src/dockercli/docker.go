// Package dockercli shells out to the docker CLI for image build, push,
// and registry login. Daemon settings are passed through the process
// environment, so the same configuration reaches every invocation.
package dockercli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sofmeright/dockwright/src/daemon"
)

// Client runs docker commands against a configured daemon.
type Client struct {
	Daemon  daemon.Settings
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// New creates a client with default output writers.
func New(settings daemon.Settings, verbose bool) *Client {
	return &Client{
		Daemon:  settings,
		Verbose: verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Build builds an image from dir and tags it.
func (c *Client) Build(ctx context.Context, dir, tag string, pull bool) error {
	args := []string{"build", "--tag", tag}
	if pull {
		args = append(args, "--pull")
	}
	args = append(args, dir)

	if err := c.run(ctx, args); err != nil {
		return fmt.Errorf("docker build failed: %w", err)
	}
	return nil
}

// Push pushes one tag of an image to the registry, logging in first when
// credentials are configured.
func (c *Client) Push(ctx context.Context, image, tag string) error {
	if c.Daemon.HasCredentials() {
		if err := c.login(ctx); err != nil {
			return err
		}
	}

	if err := c.run(ctx, []string{"push", image + ":" + tag}); err != nil {
		return fmt.Errorf("docker push failed: %w", err)
	}
	return nil
}

// login authenticates against the credential URL (or the daemon default
// registry), feeding the password over stdin.
func (c *Client) login(ctx context.Context) error {
	creds := c.Daemon.Credentials

	args := []string{"login", "--username", creds.Username, "--password-stdin"}
	if creds.URL != "" {
		args = append(args, creds.URL)
	}

	if c.Verbose {
		fmt.Fprintf(c.Stderr, "exec: docker login --username %s --password-stdin %s\n", creds.Username, creds.URL)
	}

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdin = strings.NewReader(creds.Password)
	cmd.Stdout = c.Stderr
	cmd.Stderr = c.Stderr
	cmd.Env = c.env()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker login failed: %w", err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, args []string) error {
	if c.Verbose {
		fmt.Fprintf(c.Stderr, "exec: docker %s\n", strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.Env = c.env()
	return cmd.Run()
}

// env projects the daemon settings onto the docker CLI environment.
func (c *Client) env() []string {
	env := os.Environ()
	if c.Daemon.URL != "" {
		env = append(env, "DOCKER_HOST="+c.Daemon.URL)
	}
	if c.Daemon.CertPath != "" {
		env = append(env,
			"DOCKER_CERT_PATH="+c.Daemon.CertPath,
			"DOCKER_TLS_VERIFY=1",
		)
	}
	return env
}
