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

package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/jrivets/log4g"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"github.com/xyrange/xyrange/pkg/model"
)

type (
	// Parser reads instrument files of one grammar into model.Dataset. The
	// file metadata is read first, up to the first range start line, then
	// the ranges are read one by one until the end of the stream.
	//
	// Malformed lines are not errors: unknown lines are skipped, and a data
	// row is truncated at the first token which is not a number. Only read
	// errors of the underlying stream make Parse fail.
	//
	// Parser can be used for many streams sequentially, but not concurrently.
	Parser struct {
		cfg    *Config
		cls    *Classifier
		logger log4g.Logger
		stats  Stats
	}
)

//===================== Parser =====================

// NewParser returns the parser for the grammar cfg. The cfg is copied, so
// it can be changed by the caller later.
func NewParser(cfg *Config) (*Parser, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	p := new(Parser)
	p.cfg = deepcopy.Copy(cfg).(*Config)
	p.cls = NewClassifier(p.cfg)
	p.logger = log4g.GetLogger("parser").WithId(fmt.Sprintf("[%s]", p.cfg.Name)).(log4g.Logger)
	return p, nil
}

// Parse reads the whole stream r and returns the dataset. A stream without
// ranges gives an empty, but valid, dataset. The error is returned only when
// r could not be read, errors.Cause() gives the original error then.
func (p *Parser) Parse(r io.Reader) (*model.Dataset, error) {
	var lc lineCounter
	c := NewCursor(r, p.cls, p.cfg.Window)
	ds := new(model.Dataset)

	p.parseFileMeta(c, &ds.Meta, &lc)

	rp := rangeParser{c: c, cls: p.cls, cfg: p.cfg, lc: &lc}
	for {
		rng := model.NewRange()
		if !rp.parse(&rng) {
			break
		}
		p.logger.Debug("Range #", len(ds.Ranges), " is read, points=", rng.Len(), ", meta=", rng.Meta.Len())
		ds.Ranges = append(ds.Ranges, rng)
	}

	if err := c.Err(); err != nil {
		return nil, err
	}

	p.stats = Stats{
		Lines:       int64(c.LinesRead()),
		Ranges:      int64(len(ds.Ranges)),
		Points:      int64(ds.PointsCount()),
		MetaEntries: int64(ds.Meta.Len()),
		LineTypes:   lc.stats(c.LinesRead()),
	}
	for i := range ds.Ranges {
		p.stats.MetaEntries += int64(ds.Ranges[i].Meta.Len())
	}
	p.logger.Debug("Parsed, stats=", &p.stats)
	return ds, nil
}

// ParseFile opens the file fn and parses it
func (p *Parser) ParseFile(fn string) (*model.Dataset, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open file %s", fn)
	}
	defer f.Close()

	ds, err := p.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse file %s", fn)
	}
	return ds, nil
}

// GetStats returns statistics of the last successful Parse
func (p *Parser) GetStats() *Stats {
	return p.stats.Copy()
}

// Config returns a copy of the parser grammar
func (p *Parser) Config() *Config {
	return deepcopy.Copy(p.cfg).(*Config)
}

// parseFileMeta reads key-values up to the first range start line. The
// range start line is left in the cursor.
func (p *Parser) parseFileMeta(c *Cursor, meta *model.Meta, lc *lineCounter) {
	for c.SkipIgnorable() {
		m := c.Mark()
		line, _ := c.NextLine()
		lt := p.cls.Classify(line)
		if lt == LineRangeStart {
			_ = c.Reset(m)
			return
		}
		if lt == LineKeyValue {
			key, val, _ := p.cls.KeyValue(line)
			meta.Add(p.cls.StripMarker(key), val)
		}
		lc.consumed(lt)
	}
}

// Parse is a shortcut for parsing r with the grammar cfg
func Parse(r io.Reader, cfg *Config) (*model.Dataset, error) {
	p, err := NewParser(cfg)
	if err != nil {
		return nil, err
	}
	return p.Parse(r)
}
