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

package helper

import (
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// CfgFile is the config file read at startup and written by `quickenv configure`.
var CfgFile string

// ConfigPath returns a path setting with any leading "~" expanded.
func ConfigPath(key string) (string, error) {
	return homedir.Expand(viper.GetString(key))
}
