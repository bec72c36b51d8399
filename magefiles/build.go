//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and downloads its dependencies.
func (Build) Deps() error {
	return goTidy()
}

// Builds the meshbridge binary into bin/.
func (Build) Cli() error {
	mg.Deps(Build.Deps)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/meshbridge", "."), withStream()); err != nil {
		return err
	}
	return nil
}
