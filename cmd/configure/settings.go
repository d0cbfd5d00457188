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

package configure

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/quickenv/quickenv/helper"
)

type setting struct {
	Key    string
	Prompt string
}

var settings = []setting{
	{"path", "Registry path"},
	{"shell_rc", "Shell startup file"},
	{"interpreter", "Default interpreter"},
}

// readSettingsFromReader prompts for every setting, an empty answer keeps the current value.
func readSettingsFromReader(stdin io.Reader, stdout io.Writer) (map[string]string, error) {
	reader := bufio.NewReader(stdin)
	values := map[string]string{}

	for _, s := range settings {
		current := viper.GetString(s.Key)
		fmt.Fprintf(stdout, "%s (%s): ", s.Prompt, current)

		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			answer = current
		}
		values[s.Key] = answer
	}

	return values, nil
}

func runConfigureCmd(stdin io.Reader, stdout io.Writer) error {
	values, err := readSettingsFromReader(stdin, stdout)
	if err != nil {
		return err
	}

	for key, value := range values {
		viper.Set(key, value)
	}

	if err := viper.WriteConfigAs(helper.CfgFile); err != nil {
		return fmt.Errorf("unable to write config: %w", err)
	}

	return nil
}
