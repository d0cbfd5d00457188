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
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s`)
var alphanumeric = regexp.MustCompile(`^[[:alnum:]]+$`)

// HasWhitespace reports whether data contains any whitespace character.
func HasWhitespace(data string) bool {
	return whitespace.MatchString(data)
}

// IsAlphanumeric reports whether data is non-empty and made only of ASCII letters and digits.
func IsAlphanumeric(data string) bool {
	return alphanumeric.MatchString(data)
}

// FirstLineAfter returns the trimmed line following the first line of content,
// the layout used by the entry records ("header\nvalue\n").
func FirstLineAfter(content string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return "", false
	}
	return strings.TrimSpace(lines[1]), true
}
