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
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickenv/quickenv/venv/venvtest"
)

const (
	testRoot    = "/home/user/.quickenvs"
	testShellRC = "/home/user/.bashrc"
)

func newTestManager(t *testing.T) (*Manager, afero.Fs, *venvtest.Creator) {
	fs := afero.NewMemMapFs()
	creator := venvtest.NewCreator(fs)

	m, err := New(Config{Root: testRoot, ShellRC: testShellRC, Fs: fs, Creator: creator})
	require.NoError(t, err)

	return m, fs, creator
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(content)
}

func TestNewCreatesRootAndAliasTable(t *testing.T) {
	_, fs, _ := newTestManager(t)

	isDir, err := afero.DirExists(fs, testRoot)
	assert.NoError(t, err)
	assert.True(t, isDir)
	assert.Equal(t, "", readFile(t, fs, filepath.Join(testRoot, AliasesFileName)))
}

func TestNewKeepsExistingAliasTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	line := ActivationLine("old", filepath.Join(testRoot, "old"))
	require.NoError(t, fs.MkdirAll(testRoot, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testRoot, AliasesFileName), []byte(line+"\n"), 0644))

	_, err := New(Config{Root: testRoot, ShellRC: testShellRC, Fs: fs, Creator: venvtest.NewCreator(fs)})
	require.NoError(t, err)

	assert.Equal(t, line+"\n", readFile(t, fs, filepath.Join(testRoot, AliasesFileName)))
}

func TestNewRequiresConfiguration(t *testing.T) {
	fs := afero.NewMemMapFs()

	var tests = []struct {
		name   string
		config Config
	}{
		{"root", Config{ShellRC: testShellRC, Fs: fs, Creator: venvtest.NewCreator(fs)}},
		{"shell-rc", Config{Root: testRoot, Fs: fs, Creator: venvtest.NewCreator(fs)}},
		{"creator", Config{Root: testRoot, ShellRC: testShellRC, Fs: fs}},
		{"quoted-root", Config{Root: `/home/user/"envs"`, ShellRC: testShellRC, Fs: fs, Creator: venvtest.NewCreator(fs)}},
		{"expanded-root", Config{Root: "/home/$USER/envs", ShellRC: testShellRC, Fs: fs, Creator: venvtest.NewCreator(fs)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.config)
			assert.Error(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestCreateThenList(t *testing.T) {
	var tests = []struct {
		name          string
		alias         string
		expectedAlias string
	}{
		{"ml", "", "ml"},
		{"data-science", "ds", "ds"},
		{"py_3.11", "py311", "py311"},
		{"Proj42", "P42", "P42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestManager(t)

			_, err := m.Create(CreateOptions{Name: tt.name, Alias: tt.alias})
			require.NoError(t, err)

			entries, err := m.List()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.name, entries[0].Name)
			assert.Equal(t, tt.expectedAlias, entries[0].Alias)
			assert.Equal(t, DefaultDescription, entries[0].Description)
			assert.Equal(t, filepath.Join(testRoot, tt.name), entries[0].Path)
			assert.Equal(t, "3.11.4", entries[0].Python)
		})
	}
}

func TestCreateWritesRecordsAndAliasLine(t *testing.T) {
	m, fs, creator := newTestManager(t)

	entry, err := m.Create(CreateOptions{Name: "web", Description: "  Flask app\n", Alias: "flask"})
	require.NoError(t, err)

	path := filepath.Join(testRoot, "web")
	assert.Equal(t, []string{path}, creator.Created)
	assert.Equal(t, []string{path}, creator.Upgraded)
	assert.Equal(t, []string{""}, creator.UsedInterpreters)

	assert.Equal(t, "Created by quickenv script\nFlask app\n", readFile(t, fs, filepath.Join(path, DescriptionRecord)))
	assert.Equal(t, "Created by quickenv script\nflask\n", readFile(t, fs, filepath.Join(path, AliasRecord)))
	assert.Equal(t,
		"alias flask=\". /home/user/.quickenvs/web/bin/activate\"\n",
		readFile(t, fs, filepath.Join(testRoot, AliasesFileName)),
	)
	assert.Equal(t, "source /home/user/.quickenvs/aliases\n", readFile(t, fs, testShellRC))

	assert.Equal(t, "web", entry.Name)
	assert.Equal(t, "flask", entry.Alias)
	assert.Equal(t, "Flask app", entry.Description)
}

func TestCreateWithInterpreter(t *testing.T) {
	m, _, creator := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "old", Interpreter: "python3.11"})
	require.NoError(t, err)
	_, err = m.Create(CreateOptions{Name: "abs", Interpreter: "/opt/py/bin/python3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/usr/local/bin/python3.11", "/opt/py/bin/python3"}, creator.UsedInterpreters)
}

func TestCreateWithUnknownInterpreter(t *testing.T) {
	m, fs, creator := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "broken", Interpreter: "python2.4"})

	var notFoundErr *NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, "interpreter", notFoundErr.Kind)
	assert.Equal(t, "python2.4", notFoundErr.Name)
	assert.Empty(t, creator.Created)

	exists, _ := afero.Exists(fs, filepath.Join(testRoot, "broken"))
	assert.False(t, exists)
}

func TestCreateValidation(t *testing.T) {
	var tests = []struct {
		name  string
		alias string
		field string
	}{
		{"my env", "", "name"},
		{"tab\tenv", "ok", "name"},
		{"", "ok", "name"},
		{"../escape", "ok", "name"},
		{`a"b$c`, "ok", "name"},
		{"a`id`", "ok", "name"},
		{`back\slash`, "ok", "name"},
		{"my-env", "", "alias"},
		{"env", "my alias", "alias"},
		{"env", "a_b", "alias"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.name, tt.alias), func(t *testing.T) {
			m, fs, creator := newTestManager(t)

			_, err := m.Create(CreateOptions{Name: tt.name, Alias: tt.alias})

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Equal(t, ExitInvalid, ExitCode(err))
			assert.Empty(t, creator.Created)

			infos, err := afero.ReadDir(fs, testRoot)
			require.NoError(t, err)
			for _, info := range infos {
				assert.False(t, info.IsDir(), "unexpected directory %s", info.Name())
			}
		})
	}
}

func TestCreateSameNameTwice(t *testing.T) {
	m, fs, _ := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "foo", Description: "first"})
	require.NoError(t, err)
	aliasesBefore := readFile(t, fs, filepath.Join(testRoot, AliasesFileName))

	_, err = m.Create(CreateOptions{Name: "foo", Description: "second", Alias: "other"})

	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "environment", conflictErr.Kind)
	assert.Equal(t, ExitConflict, ExitCode(err))

	entry, err := m.Get("foo")
	require.NoError(t, err)
	assert.Equal(t, "first", entry.Description)
	assert.Equal(t, "foo", entry.Alias)
	assert.Equal(t, aliasesBefore, readFile(t, fs, filepath.Join(testRoot, AliasesFileName)))
}

func TestCreateWithTakenAlias(t *testing.T) {
	m, fs, _ := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "foo", Alias: "work"})
	require.NoError(t, err)
	aliasesBefore := readFile(t, fs, filepath.Join(testRoot, AliasesFileName))

	_, err = m.Create(CreateOptions{Name: "bar", Alias: "work"})

	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "alias", conflictErr.Kind)
	assert.Equal(t, "work", conflictErr.Name)

	exists, _ := afero.Exists(fs, filepath.Join(testRoot, "bar"))
	assert.False(t, exists)
	assert.Equal(t, aliasesBefore, readFile(t, fs, filepath.Join(testRoot, AliasesFileName)))
}

func TestCreateAliasConflictIsExactMatch(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "foobar"})
	require.NoError(t, err)

	// "foo" is a prefix of an existing alias, not a duplicate
	_, err = m.Create(CreateOptions{Name: "foo"})
	assert.NoError(t, err)

	_, err = m.Create(CreateOptions{Name: "foobarbaz", Alias: "foobar"})
	assert.Error(t, err)
}

func TestCreateSubprocessFailures(t *testing.T) {
	var tests = []struct {
		step string
	}{
		{"create"},
		{"upgrade"},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			m, fs, creator := newTestManager(t)
			failure := errors.New("exit status 1")
			if tt.step == "create" {
				creator.CreateErr = failure
			} else {
				creator.UpgradeErr = failure
			}

			_, err := m.Create(CreateOptions{Name: "foo"})

			var subprocessErr *SubprocessError
			require.True(t, errors.As(err, &subprocessErr))
			assert.Equal(t, tt.step, subprocessErr.Step)
			assert.True(t, errors.Is(err, failure))
			assert.Equal(t, ExitInvalid, ExitCode(err))
			assert.Equal(t, "", readFile(t, fs, filepath.Join(testRoot, AliasesFileName)))
		})
	}
}

func TestShellBootstrapLineAddedOnce(t *testing.T) {
	m, fs, _ := newTestManager(t)
	require.NoError(t, afero.WriteFile(fs, testShellRC, []byte("export EDITOR=vim"), 0644))

	for _, name := range []string{"a", "b", "c"} {
		_, err := m.Create(CreateOptions{Name: name})
		require.NoError(t, err)
	}

	content := readFile(t, fs, testShellRC)
	assert.Equal(t, 1, strings.Count(content, "source /home/user/.quickenvs/aliases"))
	assert.Equal(t, "export EDITOR=vim\nsource /home/user/.quickenvs/aliases\n", content)
}

func TestDelete(t *testing.T) {
	m, fs, _ := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "bar"})
	require.NoError(t, err)
	_, err = m.Create(CreateOptions{Name: "foo"})
	require.NoError(t, err)

	barLine := ActivationLine("bar", filepath.Join(testRoot, "bar"))
	fooLine := ActivationLine("foo", filepath.Join(testRoot, "foo"))

	require.NoError(t, m.Delete("foo"))

	aliases := readFile(t, fs, filepath.Join(testRoot, AliasesFileName))
	assert.Equal(t, barLine+"\n", aliases)
	assert.NotContains(t, aliases, fooLine)

	exists, _ := afero.Exists(fs, filepath.Join(testRoot, "foo"))
	assert.False(t, exists)

	entries, err := m.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bar", entries[0].Name)

	require.NoError(t, m.Delete("bar"))
	entries, err = m.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteLeavesNoTemporaryFile(t *testing.T) {
	m, fs, _ := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "foo"})
	require.NoError(t, err)
	require.NoError(t, m.Delete("foo"))

	infos, err := afero.ReadDir(fs, testRoot)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, AliasesFileName, infos[0].Name())
}

func TestDeleteKeepsForeignLines(t *testing.T) {
	m, fs, _ := newTestManager(t)
	aliasesPath := filepath.Join(testRoot, AliasesFileName)

	_, err := m.Create(CreateOptions{Name: "foo"})
	require.NoError(t, err)

	// A line with the same alias pointing somewhere else isn't this entry's line
	foreign := ActivationLine("foo", "/elsewhere/foo")
	content := readFile(t, fs, aliasesPath) + foreign + "\n"
	require.NoError(t, afero.WriteFile(fs, aliasesPath, []byte(content), 0644))

	require.NoError(t, m.Delete("foo"))
	assert.Equal(t, foreign+"\n", readFile(t, fs, aliasesPath))
}

func TestCreateThenDeleteRestoresAliasTable(t *testing.T) {
	m, fs, _ := newTestManager(t)
	aliasesPath := filepath.Join(testRoot, AliasesFileName)
	original := "# mine\n\nalias x=\"ls\"\n"
	require.NoError(t, afero.WriteFile(fs, aliasesPath, []byte(original), 0644))

	_, err := m.Create(CreateOptions{Name: "foo"})
	require.NoError(t, err)
	require.NoError(t, m.Delete("foo"))

	assert.Equal(t, original, readFile(t, fs, aliasesPath))
}

func TestDeleteNotFound(t *testing.T) {
	m, fs, _ := newTestManager(t)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testRoot, "file"), []byte("x"), 0644))

	for _, name := range []string{"ghost", AliasesFileName, "file", "../user"} {
		t.Run(name, func(t *testing.T) {
			err := m.Delete(name)

			var notFoundErr *NotFoundError
			require.True(t, errors.As(err, &notFoundErr))
			assert.Equal(t, "environment", notFoundErr.Kind)
			assert.Equal(t, ExitConflict, ExitCode(err))
		})
	}
}

func TestDeleteCorruptEntry(t *testing.T) {
	m, fs, _ := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "foo"})
	require.NoError(t, err)
	require.NoError(t, fs.Remove(filepath.Join(testRoot, "foo", AliasRecord)))

	err = m.Delete("foo")

	var corruptErr *CorruptEntryError
	require.True(t, errors.As(err, &corruptErr))
	assert.Equal(t, AliasRecord, corruptErr.Record)

	exists, _ := afero.DirExists(fs, filepath.Join(testRoot, "foo"))
	assert.True(t, exists)
}

func TestListEmpty(t *testing.T) {
	m, _, _ := newTestManager(t)

	entries, err := m.List()
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListSortedAndIgnoresFiles(t *testing.T) {
	m, fs, _ := newTestManager(t)

	for _, name := range []string{"zeta", "alpha", "Mid", "beta"} {
		_, err := m.Create(CreateOptions{Name: name})
		require.NoError(t, err)
	}
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testRoot, "notes"), []byte("x"), 0644))

	entries, err := m.List()
	require.NoError(t, err)

	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"Mid", "alpha", "beta", "zeta"}, names)
}

func TestListCorruptEntry(t *testing.T) {
	var tests = []struct {
		record  string
		content *string
	}{
		{DescriptionRecord, nil},
		{AliasRecord, nil},
		{AliasRecord, strPtr("Created by quickenv script\n\n")},
		{DescriptionRecord, strPtr("no header")},
	}

	for _, tt := range tests {
		t.Run(tt.record, func(t *testing.T) {
			m, fs, _ := newTestManager(t)
			for _, name := range []string{"a", "b", "c"} {
				_, err := m.Create(CreateOptions{Name: name})
				require.NoError(t, err)
			}

			recordPath := filepath.Join(testRoot, "b", tt.record)
			if tt.content == nil {
				require.NoError(t, fs.Remove(recordPath))
			} else {
				require.NoError(t, afero.WriteFile(fs, recordPath, []byte(*tt.content), 0644))
			}

			entries, err := m.List()

			var corruptErr *CorruptEntryError
			require.True(t, errors.As(err, &corruptErr))
			assert.Equal(t, "b", corruptErr.Name)
			assert.Equal(t, tt.record, corruptErr.Record)
			assert.Nil(t, entries)
		})
	}
}

func TestListWithoutPyvenvConfig(t *testing.T) {
	m, fs, _ := newTestManager(t)

	_, err := m.Create(CreateOptions{Name: "foo"})
	require.NoError(t, err)
	require.NoError(t, fs.Remove(filepath.Join(testRoot, "foo", "pyvenv.cfg")))

	entries, err := m.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Python)
}

func TestProgressMessages(t *testing.T) {
	fs := afero.NewMemMapFs()
	var out strings.Builder

	m, err := New(Config{Root: testRoot, ShellRC: testShellRC, Fs: fs, Creator: venvtest.NewCreator(fs), Out: &out})
	require.NoError(t, err)

	_, err = m.Create(CreateOptions{Name: "foo"})
	require.NoError(t, err)

	assert.Equal(t, "Creating...\nUpgrading pip and setuptools...\n", out.String())
}

func strPtr(s string) *string {
	return &s
}
