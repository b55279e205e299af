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

package utils

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// GetFileId generates an id by the file name and its info. Two ids for the
// same name differ when the file was replaced (new inode) between the calls.
// Whether the content of a kept file was changed is decided by its size and
// modification time, not by the id.
func GetFileId(file string, info os.FileInfo) string {
	h := fmt.Sprintf("%x", md5.Sum([]byte(file)))
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return fmt.Sprintf("%v_%v_%v", h, stat.Ino, stat.Dev)
	}
	return h
}

// ExpandPaths turns glob patterns like "/data/xrd/*.uxd" into the sorted
// list of regular files matching them. Every file is returned once, even if
// it is matched by several patterns. Broken patterns are ignored.
func ExpandPaths(paths []string) []string {
	found := make(map[string]bool)
	result := make([]string, 0, len(paths))
	for _, pp := range paths {
		gg, err := filepath.Glob(pp)
		if err != nil {
			continue
		}
		for _, g := range gg {
			if found[g] {
				continue
			}
			found[g] = true
			if fi, err := os.Stat(g); err != nil || !fi.Mode().IsRegular() {
				continue
			}
			result = append(result, g)
		}
	}
	sort.Strings(result)
	return result
}
