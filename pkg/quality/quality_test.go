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
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
)

func parse(t *testing.T, s string) *normalize.Node {
	t.Helper()
	var n normalize.Node
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return &n
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

const historyRows = `[
	{"DateTime":"2025-01-01 10:00:00","NavigatedToUrl":"https://a.example"},
	{"DateTime":"2025-01-01 10:10:05","NavigatedToUrl":"https://c.example"},
	{"DateTime":"2025-01-01 10:00:05","NavigatedToUrl":"https://b.example"}
]`

func TestVisitsFromRows(t *testing.T) {
	visits := VisitsFromRows(parse(t, historyRows).Items())
	want := []Visit{
		{URL: "https://c.example", TimeSpentMS: 600000},
		{URL: "https://b.example", TimeSpentMS: 5000},
		{URL: "https://a.example", TimeSpentMS: 0},
	}
	if len(visits) != len(want) {
		t.Fatalf("visits = %+v", visits)
	}
	for i := range want {
		if visits[i] != want[i] {
			t.Errorf("visit[%d] = %+v, want %+v", i, visits[i], want[i])
		}
	}
}

func TestEvaluateBrowsing(t *testing.T) {
	s := EvaluateBrowsing(VisitsFromRows(parse(t, historyRows).Items()))

	// 2 of 3 visits have a plausible duration, all URLs are complete.
	if !near(s.Quality, (2.0/3*40+10)/100) {
		t.Errorf("Quality = %v", s.Quality)
	}
	// One short visit and one long idle visit.
	if !near(s.Authenticity, (40-20.0/3-10)/100) {
		t.Errorf("Authenticity = %v", s.Authenticity)
	}
	if !near(s.Overall, s.Quality+s.Authenticity) || s.Label != verdict.LabelModerate {
		t.Errorf("Overall = %v Label = %s", s.Overall, s.Label)
	}
}

func TestEvaluateBrowsing_IncompleteURLs(t *testing.T) {
	visits := []Visit{{URL: "ftp://x", TimeSpentMS: 5000}, {URL: "", TimeSpentMS: 5000}}
	if q := EvaluateBrowsing(visits).Quality; q != 0 {
		t.Errorf("Quality = %v, want 0 for entries without http(s) URLs", q)
	}
	if s := EvaluateBrowsing(nil); s.Quality != 0 || s.Authenticity != 0.4 {
		t.Errorf("empty history = %+v", s)
	}
}

func TestBookmarkScore(t *testing.T) {
	for folders, want := range map[int]float64{0: 0, 1: 0, 2: 0.1, 4: 0.1, 5: 0.5, 9: 0.5, 10: 1, 40: 1} {
		if got := BookmarkScore(folders); got != want {
			t.Errorf("BookmarkScore(%d) = %v, want %v", folders, got, want)
		}
	}
}

func segmentsJSON(n int, at func(i int) (time.Time, time.Time), extra string) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		start, end := at(i)
		parts[i] = fmt.Sprintf(`{"startTime":%q,"endTime":%q%s}`, start.Format(time.RFC3339), end.Format(time.RFC3339), extra)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLocationValidator_TimeSpan(t *testing.T) {
	segs := parse(t, segmentsJSON(2, func(i int) (time.Time, time.Time) {
		if i == 0 {
			return base, base.Add(time.Hour)
		}
		return base.Add(29 * 24 * time.Hour), base.Add(30 * 24 * time.Hour)
	}, `,"activities":[{"probability":0.9}],"distance":100`))

	if got := NewLocationValidator().Validate(segs.Items()); !near(got, 0.5) {
		t.Errorf("Validate() = %v, want 0.5 for a 30 day span", got)
	}
}

func TestLocationValidator_Rejects(t *testing.T) {
	// Overlapping segments with a constant gap, impossible speeds and
	// out-of-range values everywhere.
	bad := `,"distance":1e9,"activities":[{"probability":5}],` +
		`"placeVisit":{"location":{"locationConfidence":2}},` +
		`"activitySegment":{"activityType":"WALKING","distance":1e9,` +
		`"startTime":"2025-01-01T00:00:00Z","endTime":"2025-01-01T01:00:00Z",` +
		`"waypointPath":{"waypoints":[{"latE7":9999999999,"lngE7":0}]}}`
	segs := parse(t, segmentsJSON(11, func(i int) (time.Time, time.Time) {
		start := base.Add(time.Duration(i) * time.Hour)
		return start, start.Add(2 * time.Hour)
	}, bad))

	if got := NewLocationValidator().Validate(segs.Items()); got != -1 {
		t.Errorf("Validate() = %v, want -1", got)
	}
}

func TestAssess(t *testing.T) {
	doc := parse(t, `{
		"export/history.csv": `+historyRows+`,
		"export/bookmarks.html": [
			{"name":"a","personal_toolbar_folder":"false","children":[]},
			{"name":"b","personal_toolbar_folder":"false","children":[]}
		],
		"export/location.json": {"semanticSegments": [
			{"startTime":"2025-01-01T00:00:00Z","endTime":"2025-01-01T01:00:00Z"},
			{"startTime":"2025-01-30T00:00:00Z","endTime":"2025-01-31T00:00:00Z"}
		]},
		"export/notes.txt": ["hello"]
	}`)

	r := Assess(doc)
	if r.BrowsingEntries != 3 || r.BookmarkFolders != 2 || r.LocationEntries != 2 {
		t.Fatalf("sections = %d/%d/%d", r.BrowsingEntries, r.BookmarkFolders, r.LocationEntries)
	}
	wantQ := (r.Browsing.Quality*3 + 0.5*2 + 0.1*2) / 7
	wantA := (r.Browsing.Authenticity*3 + 1*2 + 1*2) / 7
	if !near(r.Quality, wantQ) || !near(r.Authenticity, wantA) {
		t.Errorf("Quality = %v (want %v), Authenticity = %v (want %v)", r.Quality, wantQ, r.Authenticity, wantA)
	}
	m := r.Metrics()
	if m[MetricQuality] != r.Quality || m[MetricAuthenticity] != r.Authenticity {
		t.Errorf("Metrics() = %v", m)
	}
}

func TestAssess_Unrecognised(t *testing.T) {
	r := Assess(parse(t, `{"title":"A","items":[1,2,3]}`))
	if r.Found() || r.Metrics() != nil {
		t.Errorf("unexpected report for plain document: %+v", r)
	}
}
