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

package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// PidFile keeps the pid of a running process in a file guarded by flock,
// so only one process can hold it, and other processes can signal it.
type PidFile struct {
	fn string
	fl *flock.Flock
}

// NewPidFile creates new PidFile struct by the file name
func NewPidFile(fn string) *PidFile {
	return &PidFile{fn: fn}
}

// Lock acquires the pid file and writes the current process id there. It
// returns an error if the file is held by another process.
func (pf *PidFile) Lock() error {
	if pf.fl != nil {
		return fmt.Errorf("pid file %s is already locked", pf.fn)
	}

	fl := flock.New(pf.fn + ".lock")
	if ok, err := fl.TryLock(); !ok || err != nil {
		if err == nil {
			err = fmt.Errorf("held by another process")
		}
		return errors.Wrapf(err, "could not lock pid file %s", pf.fn)
	}

	if err := ioutil.WriteFile(pf.fn, []byte(strconv.Itoa(os.Getpid())), 0640); err != nil {
		fl.Unlock()
		return errors.Wrapf(err, "could not write pid to %s", pf.fn)
	}
	pf.fl = fl
	return nil
}

// Unlock removes the pid file and releases the lock
func (pf *PidFile) Unlock() error {
	if pf.fl == nil {
		return fmt.Errorf("pid file %s is not locked", pf.fn)
	}
	os.Remove(pf.fn)
	err := pf.fl.Unlock()
	pf.fl = nil
	return err
}

// ReadPid returns the pid stored in the file. os.IsNotExist(errors.Cause(err))
// is true when there is no pid file.
func (pf *PidFile) ReadPid() (int, error) {
	res, err := ioutil.ReadFile(pf.fn)
	if err != nil {
		return -1, errors.Wrapf(err, "could not read pid file")
	}

	content := strings.TrimSpace(string(res))
	pid, err := strconv.Atoi(content)
	if err != nil || pid <= 0 {
		return -1, fmt.Errorf("wrong content=%q of the pid file %s", content, pf.fn)
	}
	return pid, nil
}

// Interrupt sends os.Interrupt to the process which pid is in the file
func (pf *PidFile) Interrupt() (int, error) {
	pid, err := pf.ReadPid()
	if err != nil {
		return -1, err
	}

	p, err := os.FindProcess(pid)
	if err != nil {
		return pid, errors.Wrapf(err, "could not find process pid=%d", pid)
	}
	if err = p.Signal(os.Interrupt); err != nil {
		return pid, errors.Wrapf(err, "could not send interrupt to pid=%d", pid)
	}
	return pid, nil
}
