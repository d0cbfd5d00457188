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

// Package registry manages the named environments stored under a registry root
// and keeps the shared alias table consistent with them.
//
// Layout of a registry root:
//
//	<root>/aliases                  alias table, one activation line per entry
//	<root>/<name>/                  the environment itself
//	<root>/<name>/description.txt   description record
//	<root>/<name>/alias.txt         alias record
//
// The registry assumes a single invoker, concurrent operations on the same root
// may corrupt the alias table.
package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/quickenv/quickenv/helper"
	"github.com/quickenv/quickenv/venv"
)

// Config gathers everything a Manager depends on.
type Config struct {
	Root    string
	ShellRC string
	Fs      afero.Fs
	Creator venv.Creator
	// Out receives the progress messages of Create, defaults to discarding them.
	Out    io.Writer
	Logger *zap.SugaredLogger
}

// Entry is one registered environment.
type Entry struct {
	Name        string    `yaml:"name" json:"name"`
	Alias       string    `yaml:"alias" json:"alias"`
	Description string    `yaml:"description" json:"description"`
	Path        string    `yaml:"path" json:"path"`
	Python      string    `yaml:"python,omitempty" json:"python,omitempty"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
}

// CreateOptions are the inputs of Manager.Create, only Name is mandatory.
type CreateOptions struct {
	Name        string
	Description string
	Alias       string
	Interpreter string
}

type Manager struct {
	root    string
	shellRC string
	fs      afero.Fs
	creator venv.Creator
	aliases *AliasTable
	out     io.Writer
	logger  *zap.SugaredLogger
}

// New creates the registry root and its alias table when they don't exist yet.
func New(config Config) (*Manager, error) {
	if config.Root == "" {
		return nil, errors.New("registry root is not defined")
	}
	if config.ShellRC == "" {
		return nil, errors.New("shell startup file is not defined")
	}
	if config.Creator == nil {
		return nil, errors.New("environment creator is not defined")
	}

	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(root, shellSpecialChars) {
		return nil, NewValidationError("path", root, "must not contain any of "+shellSpecialChars)
	}

	m := &Manager{
		root:    root,
		shellRC: config.ShellRC,
		fs:      config.Fs,
		creator: config.Creator,
		out:     config.Out,
		logger:  config.Logger,
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	if m.out == nil {
		m.out = io.Discard
	}
	if m.logger == nil {
		m.logger = helper.GetSugarLogger([]string{"registry"})
	}
	m.aliases = NewAliasTable(m.fs, filepath.Join(root, AliasesFileName))

	if err := m.fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("unable to create registry root %s: %w", root, err)
	}
	exists, err := afero.Exists(m.fs, m.aliases.Path())
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := afero.WriteFile(m.fs, m.aliases.Path(), []byte{}, 0644); err != nil {
			return nil, fmt.Errorf("unable to create alias table: %w", err)
		}
	}

	return m, nil
}

func (m *Manager) Root() string {
	return m.root
}

func (m *Manager) ShellRC() string {
	return m.shellRC
}

func (m *Manager) AliasesPath() string {
	return m.aliases.Path()
}

func (m *Manager) EntryPath(name string) string {
	return filepath.Join(m.root, name)
}

// Characters keeping their meaning inside the double quotes of an activation line.
const shellSpecialChars = "\"$`\\"

// ValidateName checks an environment name can be used as a directory of the root.
func ValidateName(name string) error {
	switch {
	case name == "":
		return NewValidationError("name", name, "must not be empty")
	case helper.HasWhitespace(name):
		return NewValidationError("name", name, "must not contain spaces")
	case strings.ContainsRune(name, '/') || name == "." || name == "..":
		return NewValidationError("name", name, "must not be a path")
	case strings.ContainsAny(name, shellSpecialChars):
		return NewValidationError("name", name, "must not contain any of "+shellSpecialChars)
	}
	return nil
}

// ValidateAlias checks an alias can be used as a shell alias token.
func ValidateAlias(alias string) error {
	if !helper.IsAlphanumeric(alias) {
		return NewValidationError("alias", alias, "must only contain letters and digits")
	}
	return nil
}

// Create registers a new environment. The steps run in order and aren't rolled
// back: a failure after the environment is materialized leaves its directory behind.
func (m *Manager) Create(opts CreateOptions) (*Entry, error) {
	alias := opts.Alias
	if alias == "" {
		alias = opts.Name
	}
	if err := ValidateName(opts.Name); err != nil {
		return nil, err
	}
	if err := ValidateAlias(alias); err != nil {
		return nil, err
	}

	path := m.EntryPath(opts.Name)
	exists, err := afero.Exists(m.fs, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("environment", opts.Name)
	}

	taken, err := m.aliases.Contains(alias)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewConflictError("alias", alias)
	}

	interpreter := ""
	if opts.Interpreter != "" {
		interpreter, err = m.creator.Resolve(opts.Interpreter)
		if err != nil {
			return nil, NewNotFoundError("interpreter", opts.Interpreter)
		}
	}

	m.logger.Debugw("creating environment", "name", opts.Name, "path", path, "interpreter", interpreter)
	fmt.Fprintln(m.out, "Creating...")
	if err := m.creator.Create(path, interpreter); err != nil {
		if errors.Is(err, venv.ErrInterpreterNotFound) {
			return nil, NewNotFoundError("interpreter", "default")
		}
		return nil, subprocessError("create", err)
	}

	fmt.Fprintln(m.out, "Upgrading pip and setuptools...")
	if err := m.creator.Upgrade(path); err != nil {
		return nil, subprocessError("upgrade", err)
	}

	description := normalizeDescription(opts.Description)
	if err := writeRecord(m.fs, path, DescriptionRecord, description); err != nil {
		return nil, err
	}
	if err := writeRecord(m.fs, path, AliasRecord, alias); err != nil {
		return nil, err
	}

	if err := m.aliases.Append(ActivationLine(alias, path)); err != nil {
		return nil, err
	}

	added, err := ensureBootstrap(m.fs, m.shellRC, BootstrapLine(m.aliases.Path()))
	if err != nil {
		return nil, err
	}
	if added {
		m.logger.Debugw("shell bootstrap hook added", "file", m.shellRC)
	}

	return m.readEntry(opts.Name)
}

// Delete removes the alias line of an environment then its directory. When the
// directory can't be removed the environment is left orphaned, without alias.
func (m *Manager) Delete(name string) error {
	path := m.EntryPath(name)
	if err := m.checkEntry(name); err != nil {
		return err
	}

	alias, err := readAliasRecord(m.fs, name, path)
	if err != nil {
		return err
	}

	removed, err := m.aliases.Remove(ActivationLine(alias, path))
	if err != nil {
		return err
	}
	if removed == 0 {
		m.logger.Warnw("no alias line found for environment", "name", name, "alias", alias)
	}

	m.logger.Debugw("removing environment", "name", name, "path", path)
	if err := m.fs.RemoveAll(path); err != nil {
		return fmt.Errorf("environment %q lost its alias but its directory couldn't be removed: %w", name, err)
	}

	return nil
}

// Get returns a single environment.
func (m *Manager) Get(name string) (*Entry, error) {
	if err := m.checkEntry(name); err != nil {
		return nil, err
	}
	return m.readEntry(name)
}

// List returns every environment sorted by name. A single corrupt environment
// fails the whole listing.
func (m *Manager) List() ([]*Entry, error) {
	infos, err := afero.ReadDir(m.fs, m.root)
	if err != nil {
		return nil, fmt.Errorf("unable to read registry root %s: %w", m.root, err)
	}

	names := []string{}
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)

	entries := make([]*Entry, 0, len(names))
	for _, name := range names {
		entry, err := m.readEntry(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (m *Manager) checkEntry(name string) error {
	if ValidateName(name) != nil {
		return NewNotFoundError("environment", name)
	}
	isDir, err := afero.DirExists(m.fs, m.EntryPath(name))
	if err != nil {
		return err
	}
	if !isDir {
		return NewNotFoundError("environment", name)
	}
	return nil
}

func (m *Manager) readEntry(name string) (*Entry, error) {
	path := m.EntryPath(name)

	description, err := readRecord(m.fs, name, path, DescriptionRecord)
	if err != nil {
		return nil, err
	}
	alias, err := readAliasRecord(m.fs, name, path)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Name:        name,
		Alias:       alias,
		Description: description,
		Path:        path,
	}

	if info, err := m.fs.Stat(path); err == nil {
		entry.CreatedAt = info.ModTime()
	}

	// pyvenv.cfg is informative only
	config, err := venv.ReadConfig(m.fs, path)
	switch {
	case err == nil:
		entry.Python = config.Version
	case !os.IsNotExist(err):
		m.logger.Debugw("unreadable "+venv.ConfigFileName, "name", name, "error", err)
	}

	return entry, nil
}

func subprocessError(step string, err error) error {
	output := ""
	var commandErr *venv.CommandError
	if errors.As(err, &commandErr) {
		output = commandErr.Output
	}
	return NewSubprocessError(step, output, err)
}
