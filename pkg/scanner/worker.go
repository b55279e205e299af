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
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jrivets/log4g"
)

type (
	job struct {
		desc   *desc
		schema *schema
	}

	// worker parses files received from the jobs channel and sends the
	// datasets to the scanner sink. Workers live for one scan only.
	worker struct {
		sc     *Scanner
		logger log4g.Logger
	}
)

//===================== worker =====================

func newWorker(sc *Scanner, id int) *worker {
	w := new(worker)
	w.sc = sc
	w.logger = sc.logger.WithId(fmt.Sprintf("[%v]", id)).(log4g.Logger)
	return w
}

func (w *worker) run(ctx context.Context, jobs <-chan *job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok || ctx.Err() != nil {
				return
			}
			w.process(j)
		}
	}
}

func (w *worker) process(j *job) {
	start := time.Now()
	d := j.desc

	err := w.parse(j)
	d.ParsedAt = time.Now()
	if err != nil {
		d.Error = err.Error()
		w.sc.stats.addFailed()
		w.logger.Error("Could not process file=", d.File, ", err=", err)
		return
	}

	w.sc.stats.addParsed(d.Ranges, d.Points)
	w.logger.Info("Processed file=", d.File, " (", humanize.Bytes(uint64(d.Size)), "), ranges=", d.Ranges,
		", points=", humanize.Comma(int64(d.Points)), " in ", time.Since(start))
}

func (w *worker) parse(j *job) error {
	p, err := j.schema.newParser()
	if err != nil {
		return err
	}

	ds, err := p.ParseFile(j.desc.File)
	if err != nil {
		return err
	}
	if ds.Empty() {
		w.logger.Warn("No ranges found in file=", j.desc.File, ", stats=", p.GetStats())
	}

	j.schema.addMeta(j.desc.File, ds)
	if err = w.sc.sendDataset(j.desc.File, ds); err != nil {
		return err
	}

	j.desc.Ranges = len(ds.Ranges)
	j.desc.Points = ds.PointsCount()
	return nil
}
