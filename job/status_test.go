package job_test

import (
	"testing"

	"github.com/annoq/jobqueue/job"
)

func TestStatusRoundTripsThroughText(t *testing.T) {
	cases := []job.Status{job.Queued, job.Running, job.Completed, job.Failed, job.Cancelled, job.Unknown}
	for _, s := range cases {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", s, err)
		}
		var got job.Status
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != s {
			t.Fatalf("round trip mismatch: %v != %v", got, s)
		}
	}
}

func TestParseStatusRejectsUnknownString(t *testing.T) {
	if _, err := job.ParseStatus("bogus"); err == nil {
		t.Fatal("expected an error for an unrecognized status string")
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []job.Status{job.Completed, job.Failed, job.Cancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%v should be terminal", s)
		}
	}
	nonTerminal := []job.Status{job.Unknown, job.Queued, job.Running}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Fatalf("%v should not be terminal", s)
		}
	}
}
