package telemetry

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestObserveSolveWriteText(t *testing.T) {
	c := NewCollector()
	c.ObserveSolve(150*time.Millisecond, true)
	c.ObserveSolve(10*time.Millisecond, false)

	var buf bytes.Buffer
	if err := c.WriteText(&buf); err != nil {
		t.Fatalf("WriteText error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "solvetables_solve_duration_seconds") {
		t.Error("expected the duration histogram in the exposition text")
	}
	if !strings.Contains(out, `result="sat"`) {
		t.Error("expected a sat outcome sample")
	}
	if !strings.Contains(out, `result="unsat"`) {
		t.Error("expected an unsat outcome sample")
	}
}
