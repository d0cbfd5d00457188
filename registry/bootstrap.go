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
	"strings"

	"github.com/spf13/afero"
)

// BootstrapLine is the shell startup file line loading the alias table.
func BootstrapLine(aliasesPath string) string {
	return "source " + aliasesPath
}

// ensureBootstrap appends line to the shell startup file unless it is already there.
func ensureBootstrap(fs afero.Fs, rcPath string, line string) (bool, error) {
	content, err := afero.ReadFile(fs, rcPath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("unable to read %s: %w", rcPath, err)
	}

	for _, l := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(l) == line {
			return false, nil
		}
	}

	file, err := fs.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, fmt.Errorf("unable to open %s: %w", rcPath, err)
	}
	defer file.Close()

	// Don't glue the hook to an unterminated last line
	prefix := ""
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		prefix = "\n"
	}
	if _, err := file.WriteString(prefix + line + "\n"); err != nil {
		return false, fmt.Errorf("unable to append to %s: %w", rcPath, err)
	}
	return true, nil
}
