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

// Package quality computes informative quality and authenticity metrics
// for personal-data exports: browser history CSVs, Android location
// history and bookmark files. The metrics are recorded alongside a verdict
// and never affect its score.
package quality

import (
	"math"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
	"github.com/coderRaj07/POC-BrowserDAO/pkg/verdict"
)

// Metric names recorded on a verdict.
const (
	MetricQuality      = "quality"
	MetricAuthenticity = "authenticity"
	MetricUniqueness   = "uniqueness"
)

// Report is the combined assessment of one document.
type Report struct {
	BrowsingEntries int
	LocationEntries int
	BookmarkFolders int
	Browsing        BrowsingScores
	LocationQuality float64
	BookmarkQuality float64
	Quality         float64
	Authenticity    float64
	Label           verdict.Label
}

// Found reports whether any recognised section was present.
func (r Report) Found() bool {
	return r.BrowsingEntries+r.LocationEntries+r.BookmarkFolders > 0
}

// Metrics returns the report as verdict metrics. An empty report yields nil.
func (r Report) Metrics() map[string]float64 {
	if !r.Found() {
		return nil
	}
	return map[string]float64{
		MetricQuality:      r.Quality,
		MetricAuthenticity: r.Authenticity,
	}
}

type sections struct {
	browsing  []*normalize.Node
	location  []*normalize.Node
	bookmarks []*normalize.Node
}

// Assess finds browser history rows, location segments and bookmark
// folders anywhere in doc (for example inside archive members) and
// combines their scores, weighting each section by its entry count.
func Assess(doc *normalize.Node) Report {
	var s sections
	s.collect(doc)

	r := Report{
		BrowsingEntries: len(s.browsing),
		LocationEntries: len(s.location),
		BookmarkFolders: len(s.bookmarks),
	}

	type part struct {
		n            int
		quality      float64
		authenticity float64
	}
	var parts []part

	if r.BrowsingEntries > 0 {
		r.Browsing = EvaluateBrowsing(VisitsFromRows(s.browsing))
		parts = append(parts, part{r.BrowsingEntries, r.Browsing.Quality, r.Browsing.Authenticity})
	}
	if r.LocationEntries > 0 {
		r.LocationQuality = NewLocationValidator().Validate(s.location)
		// A rejected location history contributes zero quality.
		parts = append(parts, part{r.LocationEntries, math.Max(r.LocationQuality, 0), 1.0})
	}
	if r.BookmarkFolders > 0 {
		r.BookmarkQuality = BookmarkScore(r.BookmarkFolders)
		auth := 0.0
		if r.BookmarkQuality > 0 {
			auth = 1.0
		}
		parts = append(parts, part{r.BookmarkFolders, r.BookmarkQuality, auth})
	}

	total := 0
	for _, p := range parts {
		total += p.n
	}
	for _, p := range parts {
		w := float64(p.n) / float64(total)
		r.Quality += p.quality * w
		r.Authenticity += p.authenticity * w
	}
	r.Label = verdict.LabelFor(r.Quality + r.Authenticity)
	return r
}

func (s *sections) collect(n *normalize.Node) {
	switch n.Kind() {
	case normalize.KindMap:
		if segs, ok := n.Get("semanticSegments"); ok && segs.Kind() == normalize.KindList {
			s.location = append(s.location, segs.Items()...)
			return
		}
		for _, k := range n.Keys() {
			v, _ := n.Get(k)
			s.collect(v)
		}
	case normalize.KindList:
		switch {
		case allMaps(n, ColumnURL):
			s.browsing = append(s.browsing, n.Items()...)
		case allMaps(n, "personal_toolbar_folder"):
			s.bookmarks = append(s.bookmarks, n.Items()...)
		default:
			for _, item := range n.Items() {
				s.collect(item)
			}
		}
	}
}

func allMaps(list *normalize.Node, key string) bool {
	if list.Len() == 0 {
		return false
	}
	for _, item := range list.Items() {
		if item.Kind() != normalize.KindMap || !has(item, key) {
			return false
		}
	}
	return true
}
