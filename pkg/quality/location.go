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
	"math"
	"strings"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/normalize"
)

// LocationValidator checks Android location history segments for
// physically implausible or malformed data.
type LocationValidator struct {
	// MaxSpeed is the fastest plausible travel speed in m/s.
	MaxSpeed float64
	// MaxWalkSpeed and MaxRunSpeed bound segments labelled walking/running.
	MaxWalkSpeed float64
	MaxRunSpeed  float64
}

// NewLocationValidator returns a validator with the default speed limits.
func NewLocationValidator() *LocationValidator {
	return &LocationValidator{MaxSpeed: 44.44, MaxWalkSpeed: 1.4, MaxRunSpeed: 3.5}
}

// Validate runs every plausibility check and returns the covered time span
// in units of 60 days, clamped to 1. When the checks sum below 0.7 the
// data is rejected and Validate returns -1.
func (v *LocationValidator) Validate(segments []*normalize.Node) float64 {
	checks := []float64{
		v.timeOrder(segments),
		v.speeds(segments),
		probabilities(segments),
		confidences(segments),
		waypoints(segments),
		intervalVariety(segments),
		v.travelModes(segments),
	}
	sum := 0.0
	for _, c := range checks {
		sum += c
	}
	if sum < 0.7 {
		return -1
	}
	return math.Min(timeSpanDays(segments)/60.0, 1.0)
}

func (v *LocationValidator) timeOrder(segs []*normalize.Node) float64 {
	if len(segs) == 0 {
		return 1
	}
	issues := 0
	for i, s := range segs {
		start, okS := timeField(s, "startTime")
		end, okE := timeField(s, "endTime")
		if okS && okE && end.Before(start) {
			issues++
		}
		if i < len(segs)-1 {
			next, okN := timeField(segs[i+1], "startTime")
			if okE && okN && next.Before(end) {
				issues++
			}
		}
	}
	return 1 - float64(issues)/float64(len(segs)*2-1)
}

func (v *LocationValidator) speeds(segs []*normalize.Node) float64 {
	valid, checked := 0, 0
	for _, s := range segs {
		if field(s, "activities").Len() == 0 {
			continue
		}
		checked++
		dist, _ := number(field(s, "distance"))
		if speed(dist, s) <= v.MaxSpeed {
			valid++
		}
	}
	return ratio(valid, checked)
}

func (v *LocationValidator) travelModes(segs []*normalize.Node) float64 {
	valid, checked := 0, 0
	for _, s := range segs {
		seg, ok := s.Get("activitySegment")
		if !ok {
			continue
		}
		mode := strings.ToLower(field(seg, "activityType").StringValue())
		walking, running := strings.Contains(mode, "walking"), strings.Contains(mode, "running")
		if !walking && !running {
			continue
		}
		checked++
		dist, _ := number(field(seg, "distance"))
		sp := speed(dist, seg)
		if (walking && sp <= v.MaxWalkSpeed) || (running && sp <= v.MaxRunSpeed) {
			valid++
		}
	}
	return ratio(valid, checked)
}

func speed(meters float64, n *normalize.Node) float64 {
	start, okS := timeField(n, "startTime")
	end, okE := timeField(n, "endTime")
	if !okS || !okE {
		return 0
	}
	dt := end.Sub(start).Seconds()
	if dt <= 0 {
		return 0
	}
	return meters / dt
}

func probabilities(segs []*normalize.Node) float64 {
	valid, total := 0, 0
	for _, s := range segs {
		for _, a := range field(s, "activities").Items() {
			p, ok := a.Get("probability")
			if !ok {
				continue
			}
			total++
			if f, ok := number(p); ok && f >= 0 && f <= 1 {
				valid++
			}
		}
	}
	return ratio(valid, total)
}

func confidences(segs []*normalize.Node) float64 {
	valid, total := 0, 0
	for _, s := range segs {
		visit, ok := s.Get("placeVisit")
		if !ok {
			continue
		}
		c, ok := field(visit, "location").Get("locationConfidence")
		if !ok {
			continue
		}
		total++
		if f, ok := number(c); ok && f >= 0 && f <= 1 {
			valid++
		}
	}
	return ratio(valid, total)
}

func waypoints(segs []*normalize.Node) float64 {
	valid, total := 0, 0
	for _, s := range segs {
		seg, ok := s.Get("activitySegment")
		if !ok {
			continue
		}
		for _, wp := range field(field(seg, "waypointPath"), "waypoints").Items() {
			total += 2
			lat, okLat := number(field(wp, "latE7"))
			lng, okLng := number(field(wp, "lngE7"))
			if !has(wp, "latE7") || !has(wp, "lngE7") || !okLat || !okLng {
				continue
			}
			lat, lng = lat/1e7, lng/1e7
			if lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 {
				valid += 2
			}
		}
	}
	return ratio(valid, total)
}

// intervalVariety is the share of distinct gaps between consecutive
// segments. Machine-generated data tends to repeat the same gap.
func intervalVariety(segs []*normalize.Node) float64 {
	var gaps []time.Duration
	for i := 0; i+1 < len(segs); i++ {
		end, okE := timeField(segs[i], "endTime")
		next, okN := timeField(segs[i+1], "startTime")
		if okE && okN {
			gaps = append(gaps, next.Sub(end))
		}
	}
	if len(gaps) == 0 {
		return 1
	}
	distinct := make(map[time.Duration]struct{}, len(gaps))
	for _, g := range gaps {
		distinct[g] = struct{}{}
	}
	return float64(len(distinct)) / float64(len(gaps))
}

func timeSpanDays(segs []*normalize.Node) float64 {
	var earliest, latest time.Time
	for _, s := range segs {
		if t, ok := timeField(s, "startTime"); ok && (earliest.IsZero() || t.Before(earliest)) {
			earliest = t
		}
		if t, ok := timeField(s, "endTime"); ok && (latest.IsZero() || t.After(latest)) {
			latest = t
		}
	}
	if earliest.IsZero() || latest.IsZero() {
		return 0
	}
	return latest.Sub(earliest).Hours() / 24
}

func ratio(valid, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(valid) / float64(total)
}
