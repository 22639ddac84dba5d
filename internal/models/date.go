package models

import (
	"encoding/json"
	"fmt"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date decodes due dates sent either as full RFC 3339 timestamps or as plain
// calendar dates. Values without a zone are read as UTC.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

type CreateAssignmentRequest struct {
	ID          *int64 `json:"id" validate:"required"`
	Nom         string `json:"nom" validate:"required"`
	DateDeRendu *Date  `json:"dateDeRendu" validate:"required"`
	Rendu       bool   `json:"rendu"`
}

func (r CreateAssignmentRequest) Assignment() Assignment {
	a := Assignment{Nom: r.Nom, Rendu: r.Rendu}
	if r.ID != nil {
		a.ID = *r.ID
	}
	if r.DateDeRendu != nil {
		a.DateDeRendu = r.DateDeRendu.Time
	}
	return a
}

type UpdateAssignmentRequest struct {
	ID          *int64  `json:"id,omitempty"`
	Nom         *string `json:"nom,omitempty"`
	DateDeRendu *Date   `json:"dateDeRendu,omitempty"`
	Rendu       *bool   `json:"rendu,omitempty"`
}

func (r UpdateAssignmentRequest) Update() AssignmentUpdate {
	upd := AssignmentUpdate{ID: r.ID, Nom: r.Nom, Rendu: r.Rendu}
	if r.DateDeRendu != nil {
		t := r.DateDeRendu.Time
		upd.DateDeRendu = &t
	}
	return upd
}
