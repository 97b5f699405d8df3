package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"worklink/internal/repository"
)

type jobListCacheKeyInput struct {
	Status         string `json:"status"`
	Search         string `json:"search"`
	Location       string `json:"location"`
	ProfessionID   string `json:"profession_id"`
	PostedBy       string `json:"posted_by"`
	RequestedBy    string `json:"requested_by"`
	AssignedWorker string `json:"assigned_worker"`
	Page           int    `json:"page"`
	Limit          int    `json:"limit"`
}

func normalizeCacheValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// JobsListCacheKey keys a cached list page. The status bucket stays a plain
// prefix segment so mutations can invalidate whole buckets by pattern.
func JobsListCacheKey(f repository.JobFilter) string {
	in := jobListCacheKeyInput{
		Status:   string(f.Status),
		Search:   normalizeCacheValue(f.Search),
		Location: normalizeCacheValue(f.Location),
		Page:     f.Page,
		Limit:    f.Limit,
	}
	if f.ProfessionID != nil {
		in.ProfessionID = f.ProfessionID.String()
	}
	if f.PostedBy != nil {
		in.PostedBy = f.PostedBy.String()
	}
	if f.RequestedBy != nil {
		in.RequestedBy = f.RequestedBy.String()
	}
	if f.AssignedWorker != nil {
		in.AssignedWorker = f.AssignedWorker.String()
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	h := hex.EncodeToString(sum[:])

	bucket := string(f.Status)
	if bucket == "" {
		bucket = "any"
	}
	return "jobs:list:" + bucket + ":" + h
}

// JobsBucketPattern matches every cached page of one state bucket. The "any"
// bucket holds unfiltered lists, which every mutation can affect.
func JobsBucketPattern(status string) string {
	if strings.TrimSpace(status) == "" {
		status = "any"
	}
	return "jobs:list:" + status + ":*"
}
