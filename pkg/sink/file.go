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
	"os"
	"path/filepath"
	"strings"

	"github.com/logrange/range/pkg/utils/fileutil"
	"github.com/pkg/errors"
	"github.com/xyrange/xyrange/pkg/model"
)

type (
	fileSinkConfig struct {
		// Dir is the directory where the .xy files are written
		Dir      string
		Template string
	}

	// fileSink writes every dataset into its own text file named after the
	// source file path, with the .xy extension. The path separators are
	// escaped, so sources with the same base name in different directories
	// don't share the output file. An existing file is overwritten.
	fileSink struct {
		cfg fileSinkConfig
		pf  *model.PointFormatter
	}
)

const (
	PrmFileDir    = "Dir"
	PrmSqlitePath = "Path"

	cFileSinkExt = ".xy"
)

//===================== fileSink =====================

func newFileSink(params Params) (*fileSink, error) {
	var cfg fileSinkConfig
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("invalid %s=%q, must be non-empty", PrmFileDir, cfg.Dir)
	}
	if err := fileutil.EnsureDirExists(cfg.Dir); err != nil {
		return nil, err
	}
	pf, err := newFormatter(cfg.Template)
	if err != nil {
		return nil, err
	}
	return &fileSink{cfg: cfg, pf: pf}, nil
}

func (fs *fileSink) OnDataset(src string, ds *model.Dataset) error {
	fn := fs.fileName(src)
	f, err := os.Create(fn)
	if err != nil {
		return errors.Wrapf(err, "could not create file %s", fn)
	}

	err = model.WriteText(f, ds, fs.pf)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "could not write file %s", fn)
}

// fileName returns the output file for src, "/data/a/s.uxd" gives
// "<Dir>/data_01a_01s.xy"
func (fs *fileSink) fileName(src string) string {
	fn := strings.TrimLeft(filepath.Clean(src), string(filepath.Separator))
	fn = fileutil.EscapeToFileName(filepath.ToSlash(fn))
	return filepath.Join(fs.cfg.Dir, fileutil.SetFileExt(fn, cFileSinkExt))
}

func (fs *fileSink) Close() error {
	return nil
}
