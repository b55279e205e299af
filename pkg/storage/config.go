// Copyright 2019 The xyrange Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"os"
	"strings"

	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// Config defines where the scanner keeps its state. Type can be omitted,
	// a non-empty Location means the file storage then.
	Config struct {
		Type     StorageType `json:"type,omitempty" yaml:"type,omitempty"`
		Location string      `json:"location,omitempty" yaml:"location,omitempty"`
	}
)

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		Type: TypeInMem,
	}
}

// Apply overrides c by the other fields. Switching to the in-mem storage
// drops the location, and the location alone switches to the file storage.
func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	loc := strings.TrimSpace(other.Location)
	switch {
	case other.Type == TypeInMem:
		c.Type = TypeInMem
		c.Location = ""
		return
	case other.Type != "":
		c.Type = other.Type
	case loc != "":
		c.Type = TypeFile
	}
	if loc != "" {
		c.Location = loc
	}
}

func (c *Config) Check() error {
	switch c.Type {
	case TypeFile:
		if strings.TrimSpace(c.Location) == "" {
			return fmt.Errorf("invalid Location=%q, must be non-empty for Type=%v", c.Location, c.Type)
		}
		// the directory is created on open, if it doesn't exist
		if fi, err := os.Stat(c.Location); err == nil && !fi.IsDir() {
			return fmt.Errorf("invalid Location=%q, it is not a directory", c.Location)
		}
	case TypeInMem:
		if strings.TrimSpace(c.Location) != "" {
			return fmt.Errorf("invalid Location=%q, must be empty for Type=%v", c.Location, c.Type)
		}
	default:
		return fmt.Errorf("invalid Type=%q, expected %q or %q", c.Type, TypeFile, TypeInMem)
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
