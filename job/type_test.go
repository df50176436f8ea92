package job_test

import (
	"testing"

	"github.com/annoq/jobqueue/job"
)

func TestTypeValid(t *testing.T) {
	valid := []job.Type{job.Fetch, job.Crawl, job.Extract, job.Workflow}
	for _, ty := range valid {
		if !ty.Valid() {
			t.Fatalf("%q should be valid", ty)
		}
	}
	if job.Type("bogus").Valid() {
		t.Fatal("unrecognized type should not be valid")
	}
}
