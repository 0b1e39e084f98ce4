// Package diagnostics records the topology anomalies a crack vector build
// recovers from locally. Anomalies never abort a build; they are collected here
// so callers and tests can inspect them instead of scraping log output.
package diagnostics

import (
	"context"
	"log/slog"

	"crackvector/internal/models"
)

// Severity distinguishes anomalies that drop a branch from those that only
// discard an extra candidate pixel.
type Severity int

const (
	// Soft anomalies keep the branch and discard or absorb an extra candidate.
	Soft Severity = iota

	// Hard anomalies exclude the branch from the measured output.
	Hard
)

func (s Severity) String() string {
	if s == Hard {
		return "hard"
	}
	return "soft"
}

// Stage names the pipeline step that raised an anomaly.
type Stage string

const (
	StageNeighborReattach Stage = "neighbor-reattach"
	StageJunctionReattach Stage = "junction-reattach"
	StageLinearize        Stage = "linearize"
)

// Reason classifies an anomaly.
type Reason string

const (
	ReasonTooManyEndpoints     Reason = "too-many-endpoints"
	ReasonTooFewEndpoints      Reason = "too-few-endpoints"
	ReasonMultipleNeighbors    Reason = "multiple-neighbors"
	ReasonMultipleJunctions    Reason = "multiple-junctions"
	ReasonSinglePixel          Reason = "single-pixel"
	ReasonNonLinear            Reason = "non-linear"
	ReasonInteriorJunction     Reason = "interior-junction"
	ReasonSinglePixelAmbiguity Reason = "single-pixel-ambiguity"
)

// Entry is one recorded anomaly.
type Entry struct {
	Stage    Stage
	Severity Severity
	Reason   Reason
	Message  string

	// Branch is the index of the branch in the working branch list at the
	// time the anomaly was raised, or -1 when not tied to a branch.
	Branch int

	// Coordinates holds the pixels involved. For dropped branches it is the
	// full pixel set of the branch.
	Coordinates []models.Coordinate
}

// Collector accumulates entries for one build. A nil *Collector is valid and
// discards everything.
type Collector struct {
	entries []Entry
	logger  *slog.Logger
}

// NewCollector creates a collector that also writes each entry to logger at
// debug level. logger may be nil.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

// Record stores an entry.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.entries = append(c.entries, e)
	if c.logger != nil && c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug(e.Message,
			"stage", string(e.Stage),
			"severity", e.Severity.String(),
			"reason", string(e.Reason),
			"branch", e.Branch,
			"pixels", len(e.Coordinates),
		)
	}
}

// Hard records a hard anomaly.
func (c *Collector) Hard(stage Stage, reason Reason, branch int, msg string, coords []models.Coordinate) {
	c.Record(Entry{Stage: stage, Severity: Hard, Reason: reason, Message: msg, Branch: branch, Coordinates: coords})
}

// Soft records a soft anomaly.
func (c *Collector) Soft(stage Stage, reason Reason, branch int, msg string, coords []models.Coordinate) {
	c.Record(Entry{Stage: stage, Severity: Soft, Reason: reason, Message: msg, Branch: branch, Coordinates: coords})
}

// Entries returns a copy of everything recorded so far.
func (c *Collector) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Filter returns the entries with the given severity.
func (c *Collector) Filter(s Severity) []Entry {
	var out []Entry
	for _, e := range c.Entries() {
		if e.Severity == s {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of entries with the given severity.
func (c *Collector) Count(s Severity) int {
	return len(c.Filter(s))
}

// Dropped returns the entries for branches excluded from the output. Every
// excluded branch is reported exactly once, by the linearize stage, with all
// of its pixels.
func Dropped(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Stage == StageLinearize && e.Severity == Hard {
			out = append(out, e)
		}
	}
	return out
}
