// Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diagnostic hosts the diagnostic engine: the common finding type every check in package
// checks reports into, and the engine that collects, deterministically orders, and renders them.
package diagnostic

import (
	"cmp"
	"slices"
)

// Severity classifies how confident a check is that a Finding represents a genuine defect,
// mirroring the checks' own Non-goals language: a structural violation of a hard invariant is an
// Error, a flagged-but-unproven heuristic (funnel shape, random-control-flow shape) is a Warning.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Range is a single source-range byte-offset pair (first, last), taken from some
// Expression.Range this finding is anchored to.
type Range struct {
	First int
	Last int
}

// Finding is one reportable result from any check in package checks: one or more source ranges
// (a check like funnel that relates two nodes, the funnel site and the inner sample feeding its
// scale, reports both), the check that produced it, a short category tag, and a human-readable
// message.
type Finding struct {
	Func string // "" for TopLevel
	Ranges []Range
	Check string // e.g. "constraints", "abscontinuity", "funnel", "randomcontrolflow"
	Severity Severity
	Message string
}

// Primary returns the Finding's first (and, for most checks, only) Range, the one used for
// sort order and the position a renderer shows next to the message. The zero Range when no
// range was recorded.
func (f Finding) Primary() Range {
	if len(f.Ranges) == 0 {
		return Range{}
	}
	return f.Ranges[0]
}

// Engine collects Findings from every check run over a Bundle and produces them in a
// deterministic order that callers can rely on for stable diffs across runs.
type Engine struct {
	findings []Finding
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Report appends a Finding to the engine.
func (e *Engine) Report(f Finding) {
	e.findings = append(e.findings, f)
}

// Findings returns every reported Finding sorted by source position (First, then Last), then by
// check name, then by message, so that two runs over the same Bundle always produce the same
// order regardless of which check happened to run first or which goroutine finished first.
func (e *Engine) Findings() []Finding {
	out := slices.Clone(e.findings)
	slices.SortFunc(out, func(a, b Finding) int {
		ap, bp := a.Primary(), b.Primary()
		if c := cmp.Compare(ap.First, bp.First); c != 0 {
			return c
		}
		if c := cmp.Compare(ap.Last, bp.Last); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Check, b.Check); c != 0 {
			return c
		}
		return cmp.Compare(a.Message, b.Message)
	})
	return out
}

// HasErrors reports whether any reported Finding is Severity Error, the signal a CLI uses to
// decide its exit code.
func (e *Engine) HasErrors() bool {
	for _, f := range e.findings {
		if f.Severity == Error {
			return true
		}
	}
	return false
}
