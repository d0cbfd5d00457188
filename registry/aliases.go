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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// AliasesFileName is the alias table kept at the registry root.
const AliasesFileName = "aliases"

// ActivationLine is the alias table line activating the environment at entryPath.
func ActivationLine(alias string, entryPath string) string {
	return fmt.Sprintf("alias %s=\". %s/bin/activate\"", alias, entryPath)
}

// AliasTable is the shared file mapping alias tokens to activation commands.
type AliasTable struct {
	fs   afero.Fs
	path string
}

func NewAliasTable(fs afero.Fs, path string) *AliasTable {
	return &AliasTable{fs: fs, path: path}
}

func (t *AliasTable) Path() string {
	return t.path
}

// Lines returns every line of the table as written, blank lines and comments
// included. A missing table has none.
func (t *AliasTable) Lines() ([]string, error) {
	content, err := afero.ReadFile(t.fs, t.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read alias table: %w", err)
	}
	if len(content) == 0 {
		return []string{}, nil
	}

	lines := strings.Split(string(content), "\n")
	// the terminating newline does not start a line
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// Contains reports whether a line defines exactly the alias token.
func (t *AliasTable) Contains(alias string) (bool, error) {
	lines, err := t.Lines()
	if err != nil {
		return false, err
	}

	for _, line := range lines {
		if token, ok := aliasToken(line); ok && token == alias {
			return true, nil
		}
	}
	return false, nil
}

// Append adds a line at the end of the table, creating it if needed.
func (t *AliasTable) Append(line string) error {
	content, err := afero.ReadFile(t.fs, t.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to read alias table: %w", err)
	}

	file, err := t.fs.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("unable to open alias table: %w", err)
	}
	defer file.Close()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		line = "\n" + line
	}
	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("unable to append to alias table: %w", err)
	}
	return nil
}

// Remove rewrites the table without the lines equal to line and reports how many
// were dropped, every other line is kept byte for byte. The new content is
// written to a temporary file renamed over the table.
func (t *AliasTable) Remove(line string) (int, error) {
	lines, err := t.Lines()
	if err != nil {
		return 0, err
	}

	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimRight(l, "\r") != line {
			kept = append(kept, l)
		}
	}
	removed := len(lines) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	content := ""
	if len(kept) > 0 {
		content = strings.Join(kept, "\n") + "\n"
	}
	if err := t.replace(content); err != nil {
		return 0, err
	}
	return removed, nil
}

func (t *AliasTable) replace(content string) error {
	tmp, err := afero.TempFile(t.fs, filepath.Dir(t.path), "."+AliasesFileName+"-")
	if err != nil {
		return fmt.Errorf("unable to rewrite alias table: %w", err)
	}

	_, err = tmp.WriteString(content)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = t.fs.Chmod(tmp.Name(), 0644)
	}
	if err == nil {
		err = t.fs.Rename(tmp.Name(), t.path)
	}
	if err != nil {
		_ = t.fs.Remove(tmp.Name())
		return fmt.Errorf("unable to rewrite alias table: %w", err)
	}
	return nil
}

// aliasToken extracts TOKEN out of `alias TOKEN=...`.
func aliasToken(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "alias ") {
		return "", false
	}
	rest := line[len("alias "):]
	eq := strings.Index(rest, "=")
	if eq <= 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:eq]), true
}
