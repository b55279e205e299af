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
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/jrivets/log4g"
	"github.com/logrange/range/pkg/kv"
	"github.com/logrange/range/pkg/kv/inmem"
	"github.com/logrange/range/pkg/utils/fileutil"
	"github.com/pkg/errors"
)

type (
	// Storage interface allows to read and write serialized data by keys.
	// ReadData returns os.ErrNotExist if there is no data for the key.
	Storage interface {
		ReadData(key string) ([]byte, error)
		WriteData(key string, val []byte) error
		Close() error
	}

	// inmemStorage struct is an in-mem Storage implementation on top of
	// the key-value storage
	inmemStorage struct {
		kvs    kv.Storage
		logger log4g.Logger
	}

	// fileStorage stuct a file Storage implementation. Every key is stored
	// in its own file in the location directory. The directory is locked
	// while the storage is open, so two processes cannot share it.
	fileStorage struct {
		location string
		lock     *flock.Flock
		logger   log4g.Logger
	}

	StorageType string
)

const (
	TypeFile  StorageType = "file"
	TypeInMem StorageType = "inmem"

	cLockFileName = ".lock"
)

//===================== storage =====================

func NewStorage(cfg *Config) (Storage, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}
	switch cfg.Type {
	case TypeFile:
		return newFileStorage(cfg.Location)
	case TypeInMem:
		return newInMemStorage(), nil
	}
	return nil, fmt.Errorf("unknown storage type=%v", cfg.Type)
}

func NewDefaultStorage() Storage {
	return newInMemStorage()
}

//===================== inmemStorage =====================

func newInMemStorage() *inmemStorage {
	logger := log4g.GetLogger("storage").WithId("[inmem]").(log4g.Logger)
	return &inmemStorage{kvs: inmem.New(), logger: logger}
}

func (ms *inmemStorage) ReadData(key string) ([]byte, error) {
	rec, err := ms.kvs.Get(context.Background(), kv.Key(key))
	if err == kv.ErrNotFound {
		return nil, os.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	ms.logger.Debug("Read key=", key, ", size=", len(rec.Value))
	return rec.Value, nil
}

func (ms *inmemStorage) WriteData(key string, val []byte) error {
	if val == nil {
		return nil
	}

	ctx := context.Background()
	for {
		rec, err := ms.kvs.Get(ctx, kv.Key(key))
		if err == kv.ErrNotFound {
			rec.Key = kv.Key(key)
			rec.Value = val
			_, err = ms.kvs.Create(ctx, rec)
			if err == kv.ErrAlreadyExists {
				continue
			}
		} else if err == nil {
			rec.Value = val
			_, err = ms.kvs.CasByVersion(ctx, rec)
			if err == kv.ErrWrongVersion || err == kv.ErrNotFound {
				continue
			}
		}

		if err != nil {
			return errors.Wrapf(err, "could not write key=%s", key)
		}
		ms.logger.Debug("Wrote key=", key, ", size=", len(val))
		return nil
	}
}

func (ms *inmemStorage) Close() error {
	return nil
}

func (ms *inmemStorage) String() string {
	return "[inmem]"
}

//===================== fileStorage =====================

func newFileStorage(location string) (*fileStorage, error) {
	if err := fileutil.EnsureDirExists(location); err != nil {
		return nil, err
	}

	fl := flock.New(filepath.Join(location, cLockFileName))
	if ok, err := fl.TryLock(); !ok || err != nil {
		if err == nil {
			err = fmt.Errorf("the directory is used by another process")
		}
		return nil, errors.Wrapf(err, "could not lock storage location %s", location)
	}

	logger := log4g.GetLogger("storage").WithId("[file]").(log4g.Logger)
	return &fileStorage{location: location, lock: fl, logger: logger}, nil
}

func (fs *fileStorage) ReadData(key string) ([]byte, error) {
	data, err := ioutil.ReadFile(fs.filePath(key))
	if os.IsNotExist(err) {
		return nil, os.ErrNotExist
	}
	if err == nil {
		fs.logger.Debug("Read key=", key, ", size=", len(data))
	}
	return data, err
}

// WriteData writes val into a temporary file first and renames it then, so
// a reader never sees a partially written value.
func (fs *fileStorage) WriteData(key string, val []byte) error {
	fn := fs.filePath(key)
	tmp := fn + ".tmp"
	if err := ioutil.WriteFile(tmp, val, 0640); err != nil {
		return err
	}
	if err := os.Rename(tmp, fn); err != nil {
		os.Remove(tmp)
		return err
	}
	fs.logger.Debug("Wrote key=", key, ", size=", len(val))
	return nil
}

func (fs *fileStorage) Close() error {
	return fs.lock.Unlock()
}

func (fs *fileStorage) filePath(key string) string {
	return filepath.Join(fs.location, key)
}

func (fs *fileStorage) String() string {
	return fmt.Sprintf("[file: location=%v]", fs.location)
}
