package diagnostics

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"crackvector/internal/models"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector(nil)
	c.Soft(StageNeighborReattach, ReasonMultipleNeighbors, 0, "two candidates", nil)
	c.Hard(StageLinearize, ReasonTooFewEndpoints, 3, "ring", []models.Coordinate{{Row: 1, Col: 1}})
	c.Hard(StageNeighborReattach, ReasonTooManyEndpoints, 1, "fork", nil)

	if len(c.Entries()) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(c.Entries()))
	}
	if c.Count(Hard) != 2 {
		t.Errorf("Expected 2 hard entries, got %d", c.Count(Hard))
	}
	if c.Count(Soft) != 1 {
		t.Errorf("Expected 1 soft entry, got %d", c.Count(Soft))
	}

	dropped := Dropped(c.Entries())
	if len(dropped) != 1 || dropped[0].Branch != 3 {
		t.Errorf("Expected only the linearize drop, got %+v", dropped)
	}
}

func TestCollectorEntriesIsCopy(t *testing.T) {
	c := NewCollector(nil)
	c.Soft(StageJunctionReattach, ReasonMultipleJunctions, 0, "first", nil)
	entries := c.Entries()
	entries[0].Message = "changed"
	if c.Entries()[0].Message != "first" {
		t.Error("Expected Entries to return a copy")
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.Hard(StageLinearize, ReasonSinglePixel, 0, "ignored", nil)
	if c.Entries() != nil {
		t.Error("Expected a nil collector to hold nothing")
	}
	if c.Count(Hard) != 0 {
		t.Errorf("Expected 0 entries, got %d", c.Count(Hard))
	}
}

func TestCollectorLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := NewCollector(logger)
	c.Hard(StageLinearize, ReasonNonLinear, 2, "branch skipped", nil)

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "severity=hard", "reason=non-linear", "branch=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got %q", want, out)
		}
	}

	buf.Reset()
	quiet := NewCollector(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	quiet.Soft(StageLinearize, ReasonNonLinear, 2, "branch skipped", nil)
	if buf.Len() != 0 {
		t.Errorf("Expected no output at info level, got %q", buf.String())
	}
	if quiet.Count(Soft) != 1 {
		t.Error("Expected entry to be recorded even when not logged")
	}
}

func TestSeverityString(t *testing.T) {
	if Hard.String() != "hard" || Soft.String() != "soft" {
		t.Errorf("Unexpected severity names %q, %q", Hard.String(), Soft.String())
	}
}
