package core

import (
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Environment answers questions about the host that tools ask when browsing
// for projects. Pass it to whatever needs it.
type Environment struct {
	homeDir string
}

func NewEnvironment() *Environment {
	dir, err := homedir.Dir()
	if err != nil {
		LogWarn("unable to resolve home directory: %s", err)
		dir = "."
	}
	return &Environment{homeDir: dir}
}

// NewEnvironmentWithHome pins the home directory.
func NewEnvironmentWithHome(home string) *Environment {
	return &Environment{homeDir: home}
}

func (e *Environment) HomeDirectory() string {
	return e.homeDir
}

// ExpandPath resolves a leading ~ against the home directory.
func (e *Environment) ExpandPath(p string) string {
	if p == "~" {
		return e.homeDir
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(e.homeDir, p[2:])
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

// DefaultProjectsDirectory is where project browsers start.
func (e *Environment) DefaultProjectsDirectory() string {
	return filepath.Join(e.homeDir, ".dream", "projects")
}
