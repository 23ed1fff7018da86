//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when none is specified
var Default = Build

const binaryName = "kaisetsu"

// Build builds the kaisetsu binary
func Build() error {
	fmt.Println("Building", binaryName, "...")
	return sh.RunV("go", "build", "-o", binaryName, "./cmd/kaisetsu")
}

// Test runs all tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Lint runs go vet on all packages
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Install runs the tests and installs the binary
func Install() error {
	mg.Deps(Test)
	fmt.Println("Installing...")
	return sh.RunV("go", "install", "./cmd/kaisetsu")
}

// Clean removes the built binary
func Clean() error {
	fmt.Println("Cleaning...")
	if err := os.Remove(binaryName); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
