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
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jrivets/log4g"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/xyrange/xyrange/pkg/model"
	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	sqliteSinkConfig struct {
		// Path is the database file
		Path string
	}

	// sqliteSink stores datasets into 3 tables: datasets, ranges and
	// points. Every dataset is written in one transaction. The meta columns
	// keep json objects in the file order, with <, > and & not escaped.
	sqliteSink struct {
		db     *sql.DB
		lock   sync.Mutex
		logger log4g.Logger
	}
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS datasets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		meta TEXT
	);

	CREATE TABLE IF NOT EXISTS ranges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset_id INTEGER NOT NULL REFERENCES datasets(id),
		idx INTEGER NOT NULL,
		x_start REAL NOT NULL,
		x_step REAL NOT NULL,
		meta TEXT
	);

	CREATE TABLE IF NOT EXISTS points (
		range_id INTEGER NOT NULL REFERENCES ranges(id),
		idx INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_datasets_source ON datasets(source);
	CREATE INDEX IF NOT EXISTS idx_ranges_dataset ON ranges(dataset_id, idx);
	CREATE INDEX IF NOT EXISTS idx_points_range ON points(range_id, idx);
`

//===================== sqliteSink =====================

func newSqliteSink(params Params) (*sqliteSink, error) {
	var cfg sqliteSinkConfig
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("invalid %s=%q, must be non-empty", PrmSqlitePath, cfg.Path)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create directory for %s", cfg.Path)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, errors.Wrapf(err, "could not open database %s", cfg.Path)
	}

	if _, err = db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "could not initialize schema in %s", cfg.Path)
	}

	ss := new(sqliteSink)
	ss.db = db
	ss.logger = log4g.GetLogger("sink").WithId("[sqlite]").(log4g.Logger)
	return ss, nil
}

func (ss *sqliteSink) OnDataset(src string, ds *model.Dataset) error {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ctx := context.Background()
	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "could not begin transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO datasets (source, created_at, meta) VALUES (?, ?, ?)`,
		src, time.Now(), utils.ToJsonStr(ds.Meta))
	if err != nil {
		return errors.Wrapf(err, "could not insert dataset %s", src)
	}
	dsId, err := res.LastInsertId()
	if err != nil {
		return err
	}

	pstmt, err := tx.PrepareContext(ctx, `INSERT INTO points (range_id, idx, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrapf(err, "could not prepare statement")
	}
	defer pstmt.Close()

	for ri := range ds.Ranges {
		r := &ds.Ranges[ri]
		res, err = tx.ExecContext(ctx, `INSERT INTO ranges (dataset_id, idx, x_start, x_step, meta) VALUES (?, ?, ?, ?, ?)`,
			dsId, ri, r.XStart, r.XStep, utils.ToJsonStr(r.Meta))
		if err != nil {
			return errors.Wrapf(err, "could not insert range %d of %s", ri, src)
		}
		rId, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for i, y := range r.Y {
			if _, err = pstmt.ExecContext(ctx, rId, i, r.X(i), y); err != nil {
				return errors.Wrapf(err, "could not insert point %d of range %d of %s", i, ri, src)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrapf(err, "could not commit dataset %s", src)
	}
	ss.logger.Debug("Stored dataset id=", dsId, ", source=", src, ", ranges=", len(ds.Ranges), ", points=", ds.PointsCount())
	return nil
}

func (ss *sqliteSink) Close() error {
	return ss.db.Close()
}
