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

// Package venvtest provides an in-memory venv.Creator for tests.
package venvtest

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/quickenv/quickenv/venv"
)

// Creator lays out a minimal environment on an afero filesystem.
type Creator struct {
	Fs afero.Fs
	// Interpreters maps the resolvable interpreter names to their path.
	Interpreters map[string]string
	// Version is written to the generated pyvenv.cfg.
	Version string

	CreateErr  error
	UpgradeErr error

	Created  []string
	Upgraded []string
	// UsedInterpreters records the interpreter passed to each Create call.
	UsedInterpreters []string
}

func NewCreator(fs afero.Fs) *Creator {
	return &Creator{
		Fs: fs,
		Interpreters: map[string]string{
			"python3":             "/usr/bin/python3",
			"/usr/bin/python3":    "/usr/bin/python3",
			"python3.11":          "/usr/local/bin/python3.11",
			"/opt/py/bin/python3": "/opt/py/bin/python3",
		},
		Version: "3.11.4",
	}
}

func (c *Creator) Resolve(interpreter string) (string, error) {
	path, ok := c.Interpreters[interpreter]
	if !ok {
		return "", fmt.Errorf("%w: %s", venv.ErrInterpreterNotFound, interpreter)
	}
	return path, nil
}

func (c *Creator) Create(dir string, interpreter string) error {
	c.UsedInterpreters = append(c.UsedInterpreters, interpreter)
	if c.CreateErr != nil {
		return c.CreateErr
	}

	if err := c.Fs.MkdirAll(filepath.Join(dir, "bin"), 0755); err != nil {
		return err
	}
	if err := afero.WriteFile(c.Fs, filepath.Join(dir, "bin", "activate"), []byte("# activate\n"), 0644); err != nil {
		return err
	}
	cfg := fmt.Sprintf("home = /usr/bin\ninclude-system-site-packages = false\nversion = %s\n", c.Version)
	if err := afero.WriteFile(c.Fs, filepath.Join(dir, venv.ConfigFileName), []byte(cfg), 0644); err != nil {
		return err
	}

	c.Created = append(c.Created, dir)
	return nil
}

func (c *Creator) Upgrade(dir string) error {
	if c.UpgradeErr != nil {
		return c.UpgradeErr
	}
	c.Upgraded = append(c.Upgraded, dir)
	return nil
}
