package job_test

import (
	"errors"
	"testing"

	"github.com/annoq/jobqueue/job"
)

func TestOptionsValidateRejectsOutOfRangePriority(t *testing.T) {
	opts := job.Options{Priority: job.MaxPriority + 1}
	if err := opts.Validate(); !errors.Is(err, job.ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}

	opts = job.Options{Priority: job.MinPriority - 1}
	if err := opts.Validate(); !errors.Is(err, job.ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestOptionsValidateAcceptsZeroAndInRangePriority(t *testing.T) {
	if err := (job.Options{}).Validate(); err != nil {
		t.Fatalf("zero priority should be valid (defaulted later): %v", err)
	}
	if err := (job.Options{Priority: job.MaxPriority}).Validate(); err != nil {
		t.Fatalf("max priority should be valid: %v", err)
	}
}

func TestOptionsNormalizeAppliesDefaults(t *testing.T) {
	got := job.Options{}.Normalize()
	if got.Priority != job.DefaultPriority {
		t.Fatalf("expected default priority %d, got %d", job.DefaultPriority, got.Priority)
	}
	if got.Timeout != job.DefaultTimeout {
		t.Fatalf("expected default timeout %v, got %v", job.DefaultTimeout, got.Timeout)
	}
	if got.Retries != 0 {
		t.Fatalf("expected default retries 0, got %d", got.Retries)
	}
}

func TestOptionsNormalizeLeavesExplicitValuesAlone(t *testing.T) {
	got := job.Options{Priority: 3, Retries: 5}.Normalize()
	if got.Priority != 3 || got.Retries != 5 {
		t.Fatalf("normalize should not alter explicit values: %+v", got)
	}
}
