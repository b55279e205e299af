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
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrivets/log4g"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"github.com/xyrange/xyrange/pkg/model"
	"github.com/xyrange/xyrange/pkg/sink"
	"github.com/xyrange/xyrange/pkg/storage"
	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// desc describes a file seen by the scanner. The file is parsed again
	// when its size or modification time is changed.
	desc struct {
		Id       string
		File     string
		Size     int64
		ModTime  time.Time
		ParsedAt time.Time
		Ranges   int
		Points   int
		Error    string `json:",omitempty"`
	}

	descs map[string]*desc

	// Scanner periodically looks for new or changed instrument files, parses
	// them and sends the datasets to the Sink. The seen files are persisted
	// in the Storage, so the files are not parsed again after restart.
	//
	// Scanner implements linker.Initializer and linker.Shutdowner
	Scanner struct {
		Config  *Config         `inject:""`
		Sink    sink.Sink       `inject:""`
		Storage storage.Storage `inject:""`

		cfg      *Config
		schemas  []*schema
		excludes []*regexp.Regexp

		descs    atomic.Value
		sinkLock sync.Mutex
		stats    Stats

		cancel context.CancelFunc
		waitWg sync.WaitGroup
		logger log4g.Logger
	}

	// Stats contains the scanner counters since start
	Stats struct {
		Scans  int64
		Files  int64
		Parsed int64
		Failed int64
		Ranges int64
		Points int64
	}
)

const (
	storageKeyName = "scanner.json"
)

// NewScanner creates a new Scanner. Config, Sink and Storage must be set,
// directly or by the injector, before Init or Prepare is called.
func NewScanner() *Scanner {
	s := new(Scanner)
	s.descs.Store(make(descs))
	s.logger = log4g.GetLogger("scanner")
	return s
}

// Init provides an implementation of linker.Initializer interface. It
// prepares the scanner and starts the scan and persist loops.
func (s *Scanner) Init(ctx context.Context) error {
	if err := s.Prepare(); err != nil {
		return err
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.runScanPaths(ctx)
	s.runPersistState(ctx)
	return nil
}

// Shutdown provides an implementation of linker.Shutdowner interface
func (s *Scanner) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	var err error
	if !utils.WaitWaitGroup(&s.waitWg, time.Minute) {
		err = errors.New("close timeout")
	}
	s.logger.Info("Shutdown, stats=", s.GetStats(), ", err=", err)
}

// Prepare checks the config, compiles the schemas and loads the state from
// the storage. Scan can be called after that without running the loops.
func (s *Scanner) Prepare() error {
	if s.Config == nil || s.Sink == nil || s.Storage == nil {
		return fmt.Errorf("Config, Sink and Storage must be provided")
	}
	if err := s.Config.Check(); err != nil {
		return fmt.Errorf("invalid config; %v", err)
	}
	s.cfg = deepcopy.Copy(s.Config).(*Config)
	s.logger.Info("Preparing, config=", s.cfg)

	s.schemas = make([]*schema, 0, len(s.cfg.Schemas))
	for _, sc := range s.cfg.Schemas {
		shm, err := newSchema(sc)
		if err != nil {
			return errors.Wrapf(err, "could not create schema %s", sc)
		}
		s.schemas = append(s.schemas, shm)
	}

	s.excludes = make([]*regexp.Regexp, 0, len(s.cfg.ExcludeMatchers))
	for _, ex := range s.cfg.ExcludeMatchers {
		re, _ := regexp.Compile(ex)
		s.excludes = append(s.excludes, re)
	}

	return s.loadState()
}

// Scan looks for new or changed files and parses them. It returns when all
// the files are processed or the ctx is closed. The number of processed
// files is returned.
func (s *Scanner) Scan(ctx context.Context) int {
	nd := s.scanPaths()
	md, jobs := s.mergeDescs(s.getDescs(), nd)
	s.runJobs(ctx, jobs)

	n := 0
	for _, j := range jobs {
		if j.desc.ParsedAt.IsZero() {
			// interrupted, will be picked up by the next scan
			delete(md, j.desc.Id)
			continue
		}
		n++
	}
	s.setDescs(md)

	atomic.AddInt64(&s.stats.Scans, 1)
	atomic.StoreInt64(&s.stats.Files, int64(len(md)))
	return n
}

// PersistState writes the seen files to the storage
func (s *Scanner) PersistState() error {
	return s.persistState()
}

// GetStats returns a copy of the scanner counters
func (s *Scanner) GetStats() *Stats {
	return &Stats{
		Scans:  atomic.LoadInt64(&s.stats.Scans),
		Files:  atomic.LoadInt64(&s.stats.Files),
		Parsed: atomic.LoadInt64(&s.stats.Parsed),
		Failed: atomic.LoadInt64(&s.stats.Failed),
		Ranges: atomic.LoadInt64(&s.stats.Ranges),
		Points: atomic.LoadInt64(&s.stats.Points),
	}
}

func (s *Scanner) getDescs() descs {
	return s.descs.Load().(descs)
}

func (s *Scanner) setDescs(d descs) {
	s.descs.Store(d)
}

func (s *Scanner) sendDataset(file string, ds *model.Dataset) error {
	s.sinkLock.Lock()
	defer s.sinkLock.Unlock()
	return s.Sink.OnDataset(file, ds)
}

func (s *Scanner) runScanPaths(ctx context.Context) {
	s.logger.Info("Running scan paths every ", s.cfg.ScanPathsIntervalSec, " seconds...")
	ticker := time.NewTicker(time.Second *
		time.Duration(s.cfg.ScanPathsIntervalSec))

	s.waitWg.Add(1)
	go func() {
		// scan folders periodically until ctx is closed
		for {
			s.Scan(ctx)
			if !utils.Wait(ctx, ticker) {
				break
			}
		}

		ticker.Stop()
		s.logger.Warn("Scan paths stopped.")
		s.waitWg.Done()
	}()
}

func (s *Scanner) runPersistState(ctx context.Context) {
	s.logger.Info("Running persist state every ", s.cfg.StateStoreIntervalSec, " seconds...")
	ticker := time.NewTicker(time.Second *
		time.Duration(s.cfg.StateStoreIntervalSec))

	s.waitWg.Add(1)
	go func() {
		for utils.Wait(ctx, ticker) {
			if err := s.persistState(); err != nil {
				s.logger.Error("Unable to persist state, cause=", err)
			}
		}
		ticker.Stop()
		_ = s.persistState()
		s.logger.Warn("Persist state stopped.")
		s.waitWg.Done()
	}()
}

func (s *Scanner) runJobs(ctx context.Context, jobs []*job) {
	if len(jobs) == 0 {
		return
	}

	n := s.cfg.Workers
	if n > len(jobs) {
		n = len(jobs)
	}
	s.logger.Debug("Running ", len(jobs), " job(s) by ", n, " worker(s)")

	jobsCh := make(chan *job)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(w *worker) {
			w.run(ctx, jobsCh)
			wg.Done()
		}(newWorker(s, i+1))
	}

loop:
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case jobsCh <- j:
		}
	}
	close(jobsCh)
	wg.Wait()
}

func (s *Scanner) getExcludeRe(f string) *regexp.Regexp {
	for _, re := range s.excludes {
		if re.MatchString(f) {
			return re
		}
	}
	return nil
}

func (s *Scanner) getSchema(file string) *schema {
	for _, sc := range s.schemas {
		if sc.matcher.MatchString(file) {
			return sc
		}
	}
	return nil
}

// mergeDescs returns the descriptors of the files found and the jobs for the
// new or changed ones. Descriptors of the removed files are dropped.
func (s *Scanner) mergeDescs(old, new descs) (descs, []*job) {
	s.logger.Debug("Merging descriptors: new#=", len(new), ", old#=", len(old), "...")
	var a, r, d int

	res := make(descs)
	jobs := make([]*job, 0, len(new))
	for id, nd := range new {
		od, ok := old[id]
		if ok && od.Size == nd.Size && od.ModTime.Equal(nd.ModTime) {
			res[id] = od
			continue
		}
		if ok {
			s.logger.Debug("Merge: repl (from=", od, ", to=", nd, ")")
			r++
		} else {
			s.logger.Debug("Merge: add=", nd)
			a++
		}
		res[id] = nd
		jobs = append(jobs, &job{desc: nd, schema: s.getSchema(nd.File)})
	}
	for id, od := range old {
		if _, ok := res[id]; !ok {
			s.logger.Debug("Merge: del=", od)
			d++
		}
	}

	// the files are processed in the name order
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].desc.File < jobs[j].desc.File })
	s.logger.Info("Merging result (total=", len(res), "): add#=", a, ", repl#=", r, ", del#=", d)
	return res, jobs
}

func (s *Scanner) scanPaths() descs {
	s.logger.Debug("Scanning paths, includes=", s.cfg.IncludePaths,
		", excludes=", s.cfg.ExcludeMatchers, "...")

	files := utils.ExpandPaths(s.cfg.IncludePaths)
	res := make(descs)
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			s.logger.Warn("Skipping file=", f, ", unable to get info for it; cause: ", err)
			continue
		}
		if re := s.getExcludeRe(f); re != nil {
			s.logger.Debug("Skipping file=", f, ", it is excluded with regExp=", re.String())
			continue
		}
		if s.getSchema(f) == nil {
			s.logger.Debug("Skipping file=", f, ", no schema matches it")
			continue
		}
		id := utils.GetFileId(f, info)
		res[id] = &desc{Id: id, File: f, Size: info.Size(), ModTime: info.ModTime()}
	}
	return res
}

func (s *Scanner) loadState() error {
	s.logger.Info("Loading state from storage=", s.Storage)
	data, err := s.Storage.ReadData(storageKeyName)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	d := make(descs)
	if len(data) > 0 {
		if err = json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("cannot unmarshal state from %v; cause: %v", s.Storage, err)
		}
	}
	s.setDescs(d)
	s.logger.Info("Loaded state (", len(d), " files)")
	return nil
}

func (s *Scanner) persistState() error {
	d := s.getDescs()
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("cannot marshal state=%v; cause: %v", d, err)
	}

	err = s.Storage.WriteData(storageKeyName, data)
	if err == nil {
		s.logger.Debug("Persisted state (size=", len(data), "bytes)")
	}
	return err
}

//===================== descs =====================

func (ds descs) MarshalJSON() ([]byte, error) {
	dl := make([]*desc, 0, len(ds))
	for _, d := range ds {
		dl = append(dl, d)
	}
	sort.Slice(dl, func(i, j int) bool { return dl[i].File < dl[j].File })
	return json.Marshal(&dl)
}

func (ds descs) UnmarshalJSON(data []byte) error {
	dl := make([]*desc, 0, 5)
	err := json.Unmarshal(data, &dl)
	if err == nil {
		for _, d := range dl {
			ds[d.Id] = d
		}
	}
	return err
}

func (ds descs) String() string {
	return utils.ToJsonStr(ds)
}

func (d *desc) String() string {
	return utils.ToJsonStr(d)
}

//===================== stats =====================

func (st *Stats) addParsed(ranges, points int) {
	atomic.AddInt64(&st.Parsed, 1)
	atomic.AddInt64(&st.Ranges, int64(ranges))
	atomic.AddInt64(&st.Points, int64(points))
}

func (st *Stats) addFailed() {
	atomic.AddInt64(&st.Failed, 1)
}

func (st *Stats) String() string {
	return utils.ToJsonStr(st)
}
