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

package sink

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/xyrange/xyrange/pkg/model"
	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// Params contains sink specific settings. Keys are the fields names of
	// the sink config.
	Params map[string]interface{}

	Config struct {
		Type   string `json:"type" yaml:"type"`
		Params Params `json:"params" yaml:"params"`
	}

	// Sink receives parsed datasets. The src is the name of the dataset
	// source, normally the file name.
	Sink interface {
		OnDataset(src string, ds *model.Dataset) error
		Close() error
	}
)

const (
	SnkTypeStdout = "stdout"
	SnkTypeFile   = "file"
	SnkTypeSqlite = "sqlite"
)

//===================== sink =====================

func NewSink(cfg *Config) (Sink, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}

	switch cfg.Type {
	case SnkTypeStdout:
		return newStdoutSink(cfg.Params)
	case SnkTypeFile:
		return newFileSink(cfg.Params)
	case SnkTypeSqlite:
		return newSqliteSink(cfg.Params)
	}
	return nil, fmt.Errorf("unknown sink type=%v", cfg.Type)
}

func decodeParams(params Params, cfg interface{}) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(params); err != nil {
		return fmt.Errorf("unable to decode Params=%v; %v", params, err)
	}
	return nil
}

func newFormatter(tmpl string) (*model.PointFormatter, error) {
	if tmpl == "" {
		tmpl = model.DefaultPointFormat
	}
	pf, err := model.NewPointFormatter(tmpl)
	if err != nil {
		return nil, fmt.Errorf("invalid Template=%q: %v", tmpl, err)
	}
	return pf, nil
}

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{Type: SnkTypeStdout}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.Type != "" {
		c.Type = other.Type
		c.Params = nil
	}
	if len(other.Params) > 0 {
		c.Params = make(Params, len(other.Params))
		for k, v := range other.Params {
			c.Params[k] = v
		}
	}
}

func (c *Config) Check() error {
	var pp []string

	switch c.Type {
	case SnkTypeStdout:
	case SnkTypeFile:
		pp = []string{PrmFileDir}
	case SnkTypeSqlite:
		pp = []string{PrmSqlitePath}
	default:
		return fmt.Errorf("unknown Type=%v", c.Type)
	}

	for _, p := range pp {
		if err := c.checkParamExists(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) checkParamExists(pName string) error {
	if c.Params != nil {
		if _, ok := c.Params[pName]; ok {
			return nil
		}
	}
	return fmt.Errorf("invalid Params=%v, must have param '%v'", c.Params, pName)
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
