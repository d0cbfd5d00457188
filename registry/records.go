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
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/quickenv/quickenv/helper"
)

const (
	// DescriptionRecord and AliasRecord are written inside every environment directory.
	DescriptionRecord = "description.txt"
	AliasRecord       = "alias.txt"

	DefaultDescription = "No description provided"

	recordHeader = "Created by quickenv script"
)

func writeRecord(fs afero.Fs, dir string, record string, value string) error {
	content := fmt.Sprintf("%s\n%s\n", recordHeader, value)
	if err := afero.WriteFile(fs, filepath.Join(dir, record), []byte(content), 0644); err != nil {
		return fmt.Errorf("unable to write %s record: %w", record, err)
	}
	return nil
}

// readRecord returns the value stored in a record, any missing or malformed record
// makes the entry corrupt.
func readRecord(fs afero.Fs, name string, dir string, record string) (string, error) {
	content, err := afero.ReadFile(fs, filepath.Join(dir, record))
	if err != nil {
		return "", NewCorruptEntryError(name, record, err)
	}

	value, ok := helper.FirstLineAfter(string(content))
	if !ok {
		return "", NewCorruptEntryError(name, record, nil)
	}

	return value, nil
}

func readAliasRecord(fs afero.Fs, name string, dir string) (string, error) {
	alias, err := readRecord(fs, name, dir, AliasRecord)
	if err != nil {
		return "", err
	}
	if alias == "" || helper.HasWhitespace(alias) {
		return "", NewCorruptEntryError(name, AliasRecord, nil)
	}
	return alias, nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func normalizeDescription(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return DefaultDescription
	}
	// Records hold a single line
	return lineBreaks.Replace(description)
}
