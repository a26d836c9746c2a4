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
	"sort"
	"strings"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
)

// Browsing history scoring constants, in milliseconds and percentage points.
const (
	MinTimeSpentMS          = 2000
	MaxTimeSpentMS          = 7200000
	LongDurationThresholdMS = 300000
	MaxQualityPoints        = 60
	MaxAuthenticityPoints   = 40
)

// Column names of a browser history CSV export.
const (
	ColumnURL      = "NavigatedToUrl"
	ColumnDateTime = "DateTime"
)

// Visit is one browsing history entry.
type Visit struct {
	URL         string
	TimeSpentMS float64
	Actions     int
}

// BrowsingScores holds the browsing history assessment.
type BrowsingScores struct {
	Entries      int
	Quality      float64
	Authenticity float64
	Overall      float64
	Label        verdict.Label
}

// VisitsFromRows turns CSV rows into visits, newest first. Time spent on
// a page is the gap to the next older visit; the oldest visit gets 0.
// Rows without a parseable DateTime sort last.
func VisitsFromRows(rows []*normalize.Node) []Visit {
	type row struct {
		url   string
		at    int64
		valid bool
	}
	parsed := make([]row, len(rows))
	for i, r := range rows {
		parsed[i].url = field(r, ColumnURL).StringValue()
		if t, ok := timeField(r, ColumnDateTime); ok {
			parsed[i].at = t.UnixMilli()
			parsed[i].valid = true
		}
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		if parsed[i].valid != parsed[j].valid {
			return parsed[i].valid
		}
		return parsed[i].at > parsed[j].at
	})

	visits := make([]Visit, len(parsed))
	for i, r := range parsed {
		visits[i].URL = r.url
		if i < len(parsed)-1 && r.valid && parsed[i+1].valid {
			visits[i].TimeSpentMS = float64(r.at - parsed[i+1].at)
		}
	}
	return visits
}

// EvaluateBrowsing scores visits for quality (time on page, URL
// completeness, engagement; at most 0.6) and authenticity (penalizing
// short visits and long idle visits; at most 0.4).
func EvaluateBrowsing(visits []Visit) BrowsingScores {
	q := browsingQuality(visits)
	a := browsingAuthenticity(visits)
	overall := q + a
	if overall > 1 {
		overall = 1
	}
	return BrowsingScores{
		Entries:      len(visits),
		Quality:      q,
		Authenticity: a,
		Overall:      overall,
		Label:        verdict.LabelFor(overall),
	}
}

func browsingQuality(visits []Visit) float64 {
	total := len(visits)
	if total == 0 {
		return 0
	}
	validTime, incomplete, engaged := 0, 0, 0
	for _, v := range visits {
		if !strings.HasPrefix(v.URL, "http://") && !strings.HasPrefix(v.URL, "https://") {
			incomplete++
			continue
		}
		if v.TimeSpentMS >= MinTimeSpentMS && v.TimeSpentMS <= MaxTimeSpentMS {
			validTime++
		}
		if v.Actions > 0 {
			engaged++
		}
	}
	n := float64(total)
	points := float64(validTime)/n*40 + float64(total-incomplete)/n*10 + float64(engaged)/n*10
	if points > MaxQualityPoints {
		points = MaxQualityPoints
	}
	return points / 100
}

func browsingAuthenticity(visits []Visit) float64 {
	points := float64(MaxAuthenticityPoints)
	short, idle := 0, 0
	for _, v := range visits {
		if v.TimeSpentMS < MinTimeSpentMS {
			short++
		}
		if v.TimeSpentMS > LongDurationThresholdMS && v.Actions == 0 {
			idle++
		}
	}
	if len(visits) > 0 {
		points -= float64(short) / float64(len(visits)) * 20
	}
	points -= float64(idle) * 10
	if points < 0 {
		points = 0
	}
	return points / 100
}

// BookmarkScore scores a bookmark export by folder count.
func BookmarkScore(folders int) float64 {
	switch {
	case folders >= 10:
		return 1.0
	case folders > 4:
		return 0.5
	case folders > 1:
		return 0.1
	default:
		return 0
	}
}
