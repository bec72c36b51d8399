//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Watches the exchange folders and imports files as they arrive.
func (Run) Watch() error {
	mg.Deps(Build.Cli)
	fmt.Println("Run bridge watcher...")
	if _, err := executeCmd("bin/meshbridge", withArgs("watch"), withStream()); err != nil {
		return err
	}
	return nil
}
