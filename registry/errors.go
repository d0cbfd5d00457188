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

package registry

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ExitInvalid is the exit status for input validation failures and fatal errors.
	ExitInvalid = 1
	// ExitConflict is the exit status for "already exists" and "not found" failures.
	ExitConflict = 126
)

// ValidationError is raised when an environment name or alias is malformed
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func NewValidationError(field string, value string, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", err.Field, err.Value, err.Reason)
}

// ConflictError is raised when an environment name or an alias is already taken
type ConflictError struct {
	Kind string
	Name string
}

func NewConflictError(kind string, name string) *ConflictError {
	return &ConflictError{Kind: kind, Name: name}
}

func (err *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already in use", err.Kind, err.Name)
}

// NotFoundError is raised when an environment or an interpreter can't be found
type NotFoundError struct {
	Kind string
	Name string
}

func NewNotFoundError(kind string, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", err.Kind, err.Name)
}

// CorruptEntryError is raised when an environment directory lacks one of its records
type CorruptEntryError struct {
	Name   string
	Record string
	Err    error
}

func NewCorruptEntryError(name string, record string, err error) *CorruptEntryError {
	return &CorruptEntryError{Name: name, Record: record, Err: err}
}

func (err *CorruptEntryError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("environment %q is corrupt: invalid %s record", err.Name, err.Record)
	}
	return fmt.Sprintf("environment %q is corrupt: unable to read %s record: %v", err.Name, err.Record, err.Err)
}

func (err *CorruptEntryError) Unwrap() error {
	return err.Err
}

// SubprocessError is raised when the creation or the upgrade step of an environment fails
type SubprocessError struct {
	Step   string
	Output string
	Err    error
}

func NewSubprocessError(step string, output string, err error) *SubprocessError {
	return &SubprocessError{Step: step, Output: output, Err: err}
}

func (err *SubprocessError) Error() string {
	message := fmt.Sprintf("%s step failed: %v", err.Step, err.Err)
	if output := strings.TrimSpace(err.Output); output != "" {
		message = fmt.Sprintf("%s\n%s", message, output)
	}
	return message
}

func (err *SubprocessError) Unwrap() error {
	return err.Err
}

// ExitCode maps an error returned by the Manager to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var conflictErr *ConflictError
	var notFoundErr *NotFoundError
	if errors.As(err, &conflictErr) || errors.As(err, &notFoundErr) {
		return ExitConflict
	}

	return ExitInvalid
}
