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

package venv

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/quickenv/quickenv/helper"
)

// DefaultInterpreter is used when neither the command line nor the configuration name one.
const DefaultInterpreter = "python3"

// Python creates environments with the standard `venv` module of a Python interpreter.
type Python struct {
	Interpreter string
	logger      *zap.SugaredLogger
}

func NewPython(interpreter string) *Python {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	return &Python{
		Interpreter: interpreter,
		logger:      helper.GetSugarLogger([]string{"venv"}),
	}
}

func (p *Python) Resolve(interpreter string) (string, error) {
	if filepath.IsAbs(interpreter) {
		info, err := os.Stat(interpreter)
		if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
			return "", fmt.Errorf("%w: %s", ErrInterpreterNotFound, interpreter)
		}
		return interpreter, nil
	}

	path, err := exec.LookPath(interpreter)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInterpreterNotFound, interpreter)
	}
	return path, nil
}

func (p *Python) Create(dir string, interpreter string) error {
	if interpreter == "" {
		resolved, err := p.Resolve(p.Interpreter)
		if err != nil {
			return err
		}
		interpreter = resolved
	}

	if version, err := p.Version(interpreter); err == nil {
		p.logger.Debugf("creating %s with Python %s", dir, version)
	}

	_, err := p.run(interpreter, "-m", "venv", dir)
	return err
}

func (p *Python) Upgrade(dir string) error {
	_, err := p.run(filepath.Join(dir, "bin", "pip"), "install", "-U", "pip", "setuptools")
	return err
}

// Version asks the interpreter for its version number.
func (p *Python) Version(interpreter string) (string, error) {
	out, err := p.run(interpreter, "--version")
	if err != nil {
		return "", err
	}
	return helper.SanitizeVersion(strings.TrimSpace(out))
}

func (p *Python) run(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	p.logger.Debugf("executing %s", cmd)

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		p.logger.Debugf("combined out:\n%s", string(out))
	}
	if err != nil {
		return string(out), &CommandError{Args: cmd.Args, Output: string(out), Err: err}
	}

	return string(out), nil
}
