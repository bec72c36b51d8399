//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every unit test.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the tests with the race detector. The watcher is the only concurrent code.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./bridge/assets/...", "./bridge/exchange/..."), withStream())
	return err
}

// Runs the scene store tests verbosely, including the migrations.
func (Test) Store() error {
	_, err := executeCmd("go", withArgs("test", "-v", "."), withDir("bridge/scene/sqlstore"), withStream())
	return err
}
