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

package cmd

import (
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/quickenv/quickenv/registry"
	"github.com/quickenv/quickenv/venv/venvtest"
)

const (
	testRoot    = "/home/user/.quickenvs"
	testShellRC = "/home/user/.bashrc"
)

func init() {
	color.NoColor = true
}

func newTestManager(t *testing.T, out io.Writer) (*registry.Manager, afero.Fs) {
	fs := afero.NewMemMapFs()
	manager, err := registry.New(registry.Config{
		Root:    testRoot,
		ShellRC: testShellRC,
		Fs:      fs,
		Creator: venvtest.NewCreator(fs),
		Out:     out,
	})
	require.NoError(t, err)
	return manager, fs
}
