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

package model

import (
	"bytes"
	"strings"

	"github.com/xyrange/xyrange/pkg/utils"
)

type (
	// MetaEntry is a key-value pair of the metadata
	MetaEntry struct {
		Key   string
		Value string
	}

	// Meta is an ordered key-value store which keeps metadata of a file or of
	// a range. Entries are kept in the order they were added. A key added
	// twice is stored as two entries; Get returns the latest value for it,
	// while Entries returns both, so the file content can be reproduced.
	//
	// The zero value is an empty Meta ready to use.
	Meta struct {
		entries []MetaEntry
	}
)

// Add appends the key-value pair to the end of m
func (m *Meta) Add(key, value string) {
	m.entries = append(m.entries, MetaEntry{Key: key, Value: value})
}

// Len returns number of entries stored in m, duplicates included
func (m *Meta) Len() int {
	return len(m.entries)
}

// Entries returns a copy of all entries in insertion order
func (m *Meta) Entries() []MetaEntry {
	res := make([]MetaEntry, len(m.entries))
	copy(res, m.entries)
	return res
}

// Get returns the value which was added last for the key
func (m *Meta) Get(key string) (string, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Key == key {
			return m.entries[i].Value, true
		}
	}
	return "", false
}

// Value returns the value for the key or empty string if there is no such key
func (m *Meta) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Values returns all values added for the key, in insertion order
func (m *Meta) Values(key string) []string {
	var res []string
	for _, e := range m.entries {
		if e.Key == key {
			res = append(res, e.Value)
		}
	}
	return res
}

// Keys returns the list of distinct keys in order of their first appearance
func (m *Meta) Keys() []string {
	seen := make(map[string]bool, len(m.entries))
	res := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			res = append(res, e.Key)
		}
	}
	return res
}

// MarshalJSON encodes m as a json object keeping the insertion order. Repeated
// keys appear in the object as many times as they were added.
func (m Meta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		utils.WriteJsonStr(&buf, e.Key)
		buf.WriteByte(':')
		utils.WriteJsonStr(&buf, e.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns m in the form {k1=v1, k2=v2}
func (m Meta) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Key)
		sb.WriteByte('=')
		sb.WriteString(e.Value)
	}
	sb.WriteByte('}')
	return sb.String()
}
