// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package quality

import (
	"strconv"
	"strings"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"2006-01-02",
}

// parseTime accepts the timestamp forms seen in browser and location
// exports. Values without a zone are read as UTC.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func field(n *normalize.Node, key string) *normalize.Node {
	v, _ := n.Get(key)
	return v
}

func timeField(n *normalize.Node, key string) (time.Time, bool) {
	v := field(n, key)
	if v.Kind() != normalize.KindString {
		return time.Time{}, false
	}
	return parseTime(v.StringValue())
}

// number reads a number node or numeric string.
func number(n *normalize.Node) (float64, bool) {
	switch n.Kind() {
	case normalize.KindNumber:
		return n.Float64()
	case normalize.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(n.StringValue()), 64)
		return f, err == nil
	}
	return 0, false
}

func has(n *normalize.Node, key string) bool {
	_, ok := n.Get(key)
	return ok
}
