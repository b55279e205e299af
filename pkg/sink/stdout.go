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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/xyrange/xyrange/pkg/model"
)

type (
	stdoutSinkConfig struct {
		// Format is "json" (one object per dataset per line) or "text"
		Format   string
		Template string
	}

	stdoutSink struct {
		cfg  stdoutSinkConfig
		pf   *model.PointFormatter
		lock sync.Mutex
		w    io.Writer
	}

	jsonDataset struct {
		Source  string         `json:"source"`
		Dataset *model.Dataset `json:"dataset"`
	}
)

const (
	PrmStdoutFormat   = "Format"
	PrmStdoutTemplate = "Template"

	FmtJson = "json"
	FmtText = "text"
)

//===================== stdoutSink =====================

func newStdoutSink(params Params) (*stdoutSink, error) {
	cfg := stdoutSinkConfig{Format: FmtText}
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	if cfg.Format != FmtText && cfg.Format != FmtJson {
		return nil, fmt.Errorf("invalid Format=%q, expected %q or %q", cfg.Format, FmtText, FmtJson)
	}
	pf, err := newFormatter(cfg.Template)
	if err != nil {
		return nil, err
	}
	return &stdoutSink{cfg: cfg, pf: pf, w: os.Stdout}, nil
}

func (ss *stdoutSink) OnDataset(src string, ds *model.Dataset) error {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.cfg.Format == FmtJson {
		// metadata is written as is, without escaping of <, > and &
		enc := json.NewEncoder(ss.w)
		enc.SetEscapeHTML(false)
		return enc.Encode(&jsonDataset{Source: src, Dataset: ds})
	}

	bw := bufio.NewWriter(ss.w)
	fmt.Fprintf(bw, "# source: %s\n", src)
	if err := model.WriteText(bw, ds, ss.pf); err != nil {
		return err
	}
	return bw.Flush()
}

func (ss *stdoutSink) Close() error {
	return nil
}
