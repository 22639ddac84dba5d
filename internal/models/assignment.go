package models

import (
	"strings"
	"time"
)

type Assignment struct {
	ID          int64     `json:"id"`
	Nom         string    `json:"nom"`
	DateDeRendu time.Time `json:"dateDeRendu"`
	Rendu       bool      `json:"rendu"`
}

// AssignmentUpdate carries the fields present in an update request; nil
// fields are left untouched.
type AssignmentUpdate struct {
	ID          *int64
	Nom         *string
	DateDeRendu *time.Time
	Rendu       *bool
}

func (u AssignmentUpdate) Empty() bool {
	return u.ID == nil && u.Nom == nil && u.DateDeRendu == nil && u.Rendu == nil
}

// Apply returns a copy of a with the update applied.
func (u AssignmentUpdate) Apply(a Assignment) Assignment {
	if u.ID != nil {
		a.ID = *u.ID
	}
	if u.Nom != nil {
		a.Nom = *u.Nom
	}
	if u.DateDeRendu != nil {
		a.DateDeRendu = *u.DateDeRendu
	}
	if u.Rendu != nil {
		a.Rendu = *u.Rendu
	}
	return a
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// ParseStatus maps a query value to a Status. Unknown values yield "" which
// disables status filtering.
func ParseStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusOverdue, StatusCompleted:
		return st
	}
	return ""
}

// Status classifies a relative to now. Every assignment falls in exactly one
// of the three categories.
func (a Assignment) Status(now time.Time) Status {
	switch {
	case a.Rendu:
		return StatusCompleted
	case a.DateDeRendu.Before(now):
		return StatusOverdue
	default:
		return StatusPending
	}
}

type AssignmentFilter struct {
	Search string
	Status Status
	Now    time.Time
}

// Matches reports whether a satisfies every criterion of f.
func (f AssignmentFilter) Matches(a Assignment) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(a.Nom), strings.ToLower(f.Search)) {
		return false
	}
	if f.Status != "" && a.Status(f.Now) != f.Status {
		return false
	}
	return true
}

type AssignmentStats struct {
	Overdue   int64 `json:"overdue"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// Add counts a into the bucket matching its status at now.
func (s *AssignmentStats) Add(a Assignment, now time.Time) {
	switch a.Status(now) {
	case StatusCompleted:
		s.Completed++
	case StatusOverdue:
		s.Overdue++
	default:
		s.Pending++
	}
	s.Total++
}
