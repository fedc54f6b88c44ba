package process

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Script describes an inline script run by a shell.
type Script struct {
	// Shell selects the interpreter: bash, sh, pwsh, powershell, python or
	// node. Any other value is used as the binary with "-c". Empty picks bash
	// when available and sh otherwise.
	Shell  string
	Source string
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// ShellCommand returns the command that runs source with shell.
func ShellCommand(shell, source string) Command {
	switch strings.ToLower(shell) {
	case "":
		if _, err := exec.LookPath("bash"); err == nil {
			return ShellCommand("bash", source)
		}
		return ShellCommand("sh", source)
	case "bash":
		return Command{Path: "bash", Args: []string{"--noprofile", "--norc", "-e", "-o", "pipefail", "-c", source}}
	case "sh":
		return Command{Path: "sh", Args: []string{"-e", "-c", source}}
	case "pwsh", "powershell":
		return Command{Path: shell, Args: []string{"-NoLogo", "-NoProfile", "-NonInteractive", "-Command", source}}
	case "python", "python3":
		return Command{Path: shell, Args: []string{"-c", source}}
	case "node", "deno", "bun":
		return Command{Path: shell, Args: []string{"-e", source}}
	default:
		return Command{Path: shell, Args: []string{"-c", source}}
	}
}

// RunScript runs s and returns its result. A non-zero exit is returned as an
// error along with the result.
func RunScript(ctx context.Context, s Script) (*Result, error) {
	if strings.TrimSpace(s.Source) == "" {
		return nil, fmt.Errorf("process: script is empty")
	}
	cmd := ShellCommand(s.Shell, s.Source)
	cmd.Dir = s.Dir
	cmd.Env = s.Env
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	return Run(ctx, cmd)
}
