package domain

import "time"

// Sample is one observation of a repository's absolute pull counter.
// Samples are append-only: once recorded they are never updated or deleted.
type Sample struct {
	ID        string    `json:"id"`
	Org       string    `json:"org"`
	Repo      string    `json:"repo"`
	Timestamp time.Time `json:"timestamp"`
	Pulls     int64     `json:"pulls"`
}

// Repository returns the identity of the repository this sample belongs to
func (s *Sample) Repository() Repository {
	return Repository{Org: s.Org, Name: s.Repo}
}
