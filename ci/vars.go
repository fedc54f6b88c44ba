package ci

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Driver names.
const (
	DriverGitHub  = "github"
	DriverAzure   = "azdo"
	DriverLocal   = "local"
	DriverDefault = "default"
)

// VarOptions modify how a variable is published.
type VarOptions struct {
	Secret bool
	Output bool
}

// VarSetter publishes a variable to the CI system.
type VarSetter interface {
	SetVar(name, value string, opts VarOptions) error
}

// Environment is the process environment seen by a VarSetter.
type Environment interface {
	Getenv(key string) string
	Setenv(key, value string) error
}

// OSEnvironment reads and writes the real process environment.
type OSEnvironment struct{}

func (OSEnvironment) Getenv(key string) string        { return os.Getenv(key) }
func (OSEnvironment) Setenv(key, value string) error { return os.Setenv(key, value) }

// Detect returns the driver for the CI system described by env.
func Detect(env Environment) string {
	switch {
	case env.Getenv("GITHUB_ACTIONS") == "true":
		return DriverGitHub
	case env.Getenv("TF_BUILD") != "":
		return DriverAzure
	default:
		return DriverDefault
	}
}

// New creates the VarSetter for driver. Commands are written to out.
func New(driver string, env Environment, out io.Writer) (VarSetter, error) {
	switch driver {
	case "", DriverDefault:
		return &processSetter{env: env}, nil
	case DriverGitHub:
		return &GitHubSetter{env: env, out: out}, nil
	case DriverAzure:
		return &AzureSetter{env: env, out: out}, nil
	case DriverLocal:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("ci: unknown driver %q", driver)
	}
}

// Nop ignores every variable.
type Nop struct{}

func (Nop) SetVar(string, string, VarOptions) error { return nil }

type processSetter struct {
	env Environment
}

func (s *processSetter) SetVar(name, value string, _ VarOptions) error {
	return s.env.Setenv(name, value)
}

// GitHubSetter appends variables to the files named by GITHUB_ENV and
// GITHUB_OUTPUT and masks secrets with the add-mask workflow command.
type GitHubSetter struct {
	mu  sync.Mutex
	env Environment
	out io.Writer
}

func (s *GitHubSetter) SetVar(name, value string, opts VarOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.env.Setenv(name, value); err != nil {
		return err
	}
	if opts.Secret {
		if _, err := fmt.Fprintf(s.out, "::add-mask::%s\n", value); err != nil {
			return err
		}
	}
	if err := appendGitHubFile(s.env.Getenv("GITHUB_ENV"), name, value); err != nil {
		return err
	}
	if opts.Output {
		return appendGitHubFile(s.env.Getenv("GITHUB_OUTPUT"), name, value)
	}
	return nil
}

func appendGitHubFile(path, name, value string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ci: open %s: %w", path, err)
	}
	defer f.Close()

	if strings.Contains(value, "\n") {
		_, err = fmt.Fprintf(f, "%s<<EOF\n%s\nEOF\n", name, value)
	} else {
		_, err = fmt.Fprintf(f, "%s=%s\n", name, value)
	}
	if err != nil {
		return fmt.Errorf("ci: write %s: %w", path, err)
	}
	return nil
}

// AzureSetter emits task.setvariable logging commands.
type AzureSetter struct {
	mu  sync.Mutex
	env Environment
	out io.Writer
}

func (s *AzureSetter) SetVar(name, value string, opts VarOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.env.Setenv(name, value); err != nil {
		return err
	}
	var attrs []string
	if opts.Secret {
		attrs = append(attrs, "issecret=true")
	}
	if opts.Output {
		attrs = append(attrs, "isoutput=true")
	}
	attr := ""
	if len(attrs) > 0 {
		attr = ";" + strings.Join(attrs, ";")
	}
	_, err := fmt.Fprintf(s.out, "##vso[task.setvariable variable=%s%s]%s\n", name, attr, value)
	return err
}
