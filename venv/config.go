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
	"path/filepath"

	"github.com/magiconair/properties"
	"github.com/spf13/afero"

	"github.com/quickenv/quickenv/helper"
)

// ConfigFileName is the file the venv module writes at the top of every environment.
const ConfigFileName = "pyvenv.cfg"

// Config holds the parts of pyvenv.cfg quickenv reports on.
type Config struct {
	Home                      string
	Version                   string
	IncludeSystemSitePackages bool
}

// ReadConfig parses the pyvenv.cfg of the environment in dir.
func ReadConfig(fs afero.Fs, dir string) (*Config, error) {
	content, err := afero.ReadFile(fs, filepath.Join(dir, ConfigFileName))
	if err != nil {
		return nil, err
	}

	props, err := properties.Load(content, properties.UTF8)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Home:                      props.GetString("home", ""),
		IncludeSystemSitePackages: props.GetBool("include-system-site-packages", false),
	}

	// "version" before Python 3.11, "version_info" after
	rawVersion := props.GetString("version", props.GetString("version_info", ""))
	if rawVersion != "" {
		if config.Version, err = helper.SanitizeVersion(rawVersion); err != nil {
			return nil, err
		}
	}

	return config, nil
}
