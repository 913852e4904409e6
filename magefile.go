//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "kotoba"

// Default target to run when none is specified
var Default = Build

// Build compiles the kotoba binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/kotoba")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Install copies the binary to ~/go/bin
func Install() error {
	mg.Deps(Build)

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	dest := filepath.Join(home, "go", "bin", binary)
	fmt.Println("Installing to", dest)
	return sh.Copy(dest, binary)
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm(binary)
}
