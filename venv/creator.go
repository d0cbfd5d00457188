// Copyright 2021 Artificial Intelligence Redefined <dev+cogment@ai-r.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package venv materializes Python virtual environments on disk.
package venv

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInterpreterNotFound is returned when an interpreter can't be resolved to an executable.
var ErrInterpreterNotFound = errors.New("interpreter not found")

// Creator is the mechanism populating an environment directory.
type Creator interface {
	// Resolve turns a binary name or an absolute path into an executable path.
	Resolve(interpreter string) (string, error)
	// Create populates dir with a runnable environment. An empty interpreter
	// means the creator's default one.
	Create(dir string, interpreter string) error
	// Upgrade refreshes the package-management baseline of the environment in dir.
	Upgrade(dir string) error
}

// CommandError is returned when a subprocess exits with a failure.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (err *CommandError) Error() string {
	return fmt.Sprintf("%q failed: %v", strings.Join(err.Args, " "), err.Err)
}

func (err *CommandError) Unwrap() error {
	return err.Err
}
