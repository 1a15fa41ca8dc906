// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides the mage build targets for prodcfg.
//
// Usage:
//
//	mage build        Compile prodcfg to bin/
//	mage test:all     Run all tests with the race detector
//	mage test:unit    Run the tests in short mode
//	mage test:cover   Write a coverage profile
//	mage lint         Run go vet and golangci-lint
//	mage clean        Remove build artifacts
//	mage install      Install prodcfg to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "prodcfg"
	binaryDir  = "bin"
	cmdDir     = "./cmd/prodcfg"
	versionVar = "github.com/mesh-intelligence/prodcfg/internal/cli.Version"
)

func ensureBinDir() error {
	return os.MkdirAll(binaryDir, 0o755)
}

// Build compiles the prodcfg binary to bin/, stamping the version from
// PRODCFG_VERSION when set.
func Build() error {
	mg.Deps(ensureBinDir)
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if v := os.Getenv("PRODCFG_VERSION"); v != "" {
		args = append(args, "-ldflags", "-X "+versionVar+"="+v)
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
