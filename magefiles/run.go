//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Opens the swarm window with the default configuration.
func (Run) Swarm() error {
	fmt.Println("Run swarm...")
	_, err := executeCmd("go", withArgs("run", "./cmd/oxy-swarm", "run"), withStream())
	return err
}

// Renders the swarm headless in both submission modes and prints the reports.
func (Run) Bench() error {
	for _, mode := range []string{"direct", "indirect"} {
		if _, err := executeCmd("go", withArgs("run", "./cmd/oxy-swarm", "bench", "--mode", mode, "--count", "10000"), withStream()); err != nil {
			return err
		}
	}
	return nil
}
