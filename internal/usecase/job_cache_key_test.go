package usecase

import (
	"strings"
	"testing"

	"worklink/internal/domain/job"
	"worklink/internal/repository"

	"github.com/google/uuid"
)

func TestJobsListCacheKeyStable(t *testing.T) {
	f := repository.JobFilter{Status: job.StatusPublic, Search: "  Fix   SINK ", Page: 2, Limit: 10}
	g := repository.JobFilter{Status: job.StatusPublic, Search: "fix sink", Page: 2, Limit: 10}

	if JobsListCacheKey(f) != JobsListCacheKey(g) {
		t.Fatal("normalized filters should share a key")
	}
}

func TestJobsListCacheKeyDiscriminates(t *testing.T) {
	base := repository.JobFilter{Status: job.StatusPublic, Page: 1, Limit: 10}

	next := base
	next.Page = 2
	if JobsListCacheKey(base) == JobsListCacheKey(next) {
		t.Fatal("page must change the key")
	}

	worker := uuid.New()
	scoped := base
	scoped.AssignedWorker = &worker
	if JobsListCacheKey(base) == JobsListCacheKey(scoped) {
		t.Fatal("worker scope must change the key")
	}
}

func TestJobsBucketPatternCoversKeys(t *testing.T) {
	f := repository.JobFilter{Status: job.StatusRequested, Page: 1, Limit: 10}
	key := JobsListCacheKey(f)

	pattern := JobsBucketPattern(string(job.StatusRequested))
	prefix := strings.TrimSuffix(pattern, "*")
	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("key %q not covered by bucket pattern %q", key, pattern)
	}

	unfiltered := JobsListCacheKey(repository.JobFilter{Page: 1, Limit: 10})
	anyPrefix := strings.TrimSuffix(JobsBucketPattern(""), "*")
	if !strings.HasPrefix(unfiltered, anyPrefix) {
		t.Fatalf("unfiltered key %q not in the any bucket", unfiltered)
	}
}
