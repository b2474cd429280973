//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the engine on the project in $DREAM_PROJECT, or the one named in the config.
func (Run) Engine() error {
	mg.Deps(Build.Engine)

	args := []string{"-config", "dream.toml"}
	if project := os.Getenv("DREAM_PROJECT"); project != "" {
		args = append(args, "-project", project)
	}
	fmt.Println("Run engine...")
	if _, err := executeCmd("bin/dream", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
