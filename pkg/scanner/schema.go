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

package scanner

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"sort"
	"strings"

	"github.com/xyrange/xyrange/pkg/model"
	"github.com/xyrange/xyrange/pkg/scanner/parser"
	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// SchemaConfig describes how the files matched by PathMatcher are parsed
	SchemaConfig struct {
		// PathMatcher contains a regexp for matching file names. It can contain
		// named groups, which values can be used in Meta templates
		PathMatcher string `json:"pathMatcher" yaml:"pathMatcher"`

		// Grammar is the name of the grammar preset, "default" or "uxd"
		Grammar string `json:"grammar" yaml:"grammar"`

		// Params override the preset fields, e.g. {"RangeStartTag": "_SCAN"}
		Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`

		// Meta contains key-value pairs added to the file metadata of every
		// dataset. Values are templates with variables in curly braces,
		// e.g. "{file}", taken from PathMatcher groups.
		Meta map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
	}

	schema struct {
		cfg     *SchemaConfig
		matcher *regexp.Regexp
		pcfg    *parser.Config
	}
)

//===================== schema =====================

func newSchema(cfg *SchemaConfig) (*schema, error) {
	pcfg, err := parser.NewConfigFromParams(cfg.Grammar, cfg.Params)
	if err != nil {
		return nil, err
	}
	return &schema{
		cfg:     cfg,
		matcher: regexp.MustCompile(cfg.PathMatcher),
		pcfg:    pcfg,
	}, nil
}

// newParser returns a parser for one file. Parsers keep stats of the last
// parse, so they are not shared between workers.
func (s *schema) newParser() (*parser.Parser, error) {
	return parser.NewParser(s.pcfg)
}

// addMeta appends the schema meta for the file to the dataset file meta.
// Keys are added in sorted order, so the output is stable.
func (s *schema) addMeta(file string, ds *model.Dataset) {
	if len(s.cfg.Meta) == 0 {
		return
	}
	vars := s.getVars(file)
	keys := make([]string, 0, len(s.cfg.Meta))
	for k := range s.cfg.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ds.Meta.Add(k, s.subsVars(s.cfg.Meta[k], vars))
	}
}

func (s *schema) getVars(l string) map[string]string {
	names := s.matcher.SubexpNames()
	match := s.matcher.FindStringSubmatch(l)

	if len(names) > 1 {
		names = names[1:] //skip ""
	}
	if len(match) > 1 {
		match = match[1:] //skip "" value
	}

	vars := make(map[string]string, len(names))
	for i, n := range names {
		if len(match) > i {
			vars[n] = match[i]
		} else {
			vars[n] = ""
		}
	}
	return vars
}

func (s *schema) subsVars(l string, vars map[string]string) string {
	for k, v := range vars {
		l = strings.Replace(l, "{"+k+"}", v, -1)
	}
	return l
}

//===================== schemaConfig =====================

func (sc *SchemaConfig) Check() error {
	if strings.TrimSpace(sc.PathMatcher) == "" {
		return errors.New("PathMatcher must be non-empty")
	}
	_, err := syntax.Parse(sc.PathMatcher, syntax.Perl)
	if err != nil {
		return fmt.Errorf("PathMatcher=%v is invalid; %v", sc.PathMatcher, err)
	}
	if _, err = parser.NewConfigFromParams(sc.Grammar, sc.Params); err != nil {
		return fmt.Errorf("Grammar=%v is invalid; %v", sc.Grammar, err)
	}
	return nil
}

func (sc *SchemaConfig) String() string {
	return utils.ToJsonStr(sc)
}
