package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Progress is the persisted per-job progress snapshot.
type Progress struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
}

// NewProgress computes the percentage for completed out of total items.
func NewProgress(total, completed int) Progress {
	p := Progress{Total: total, Completed: completed}
	if total > 0 {
		p.Percent = float64(completed) / float64(total) * 100
	}
	return p
}

// Sections holds the four text blocks drafted by one generator call.
type Sections struct {
	About        string
	WhatToExpect string
	Subscribe    string
	Tags         string
}

// Job tracks one generation run for a subject.
type Job struct {
	ID           int64
	JobID        string
	WorkflowID   *int64
	Subject      string
	Context      string
	SourceURL    string
	OverrideText string
	Force        bool
	Status       JobStatus
	Progress     Progress
	Generated    Sections
	StartedAt    *time.Time
	CompletedAt  *time.Time
	UpdatedAt    time.Time
	ErrorMessage string
	Version      int
}

// JobUpdate is a field-level mutation applied to a job record. Nil fields are
// left untouched; Status is always written.
type JobUpdate struct {
	Status       JobStatus
	Progress     *Progress
	Generated    *Sections
	ErrorMessage *string
	CompletedAt  *time.Time
}
