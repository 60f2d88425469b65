// Package model defines the core data types of the hiring pipeline: jobs and their rounds,
// questions and assessments, and the per-candidate application record.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// RoundCatalog is the canonical, ordered list of a job's rounds. Position is pipeline order.
type RoundCatalog []Round

// Len returns the number of rounds.
func (c RoundCatalog) Len() int { return len(c) }

// At returns the round at position pos.
//
//nolint:ireturn // Round is a closed sum type.
func (c RoundCatalog) At(pos int) (Round, bool) {
	if pos < 0 || pos >= len(c) {
		return nil, false
	}
	return c[pos], true
}

// Position resolves a stable round id to its position in the catalog.
func (c RoundCatalog) Position(roundID int64) (int, bool) {
	for i, r := range c {
		if r.RoundID() == roundID {
			return i, true
		}
	}
	return -1, false
}

// IsLast reports whether pos is the final round.
func (c RoundCatalog) IsLast(pos int) bool { return pos+1 == len(c) }

// Order returns the round ids in pipeline order.
func (c RoundCatalog) Order() []int64 {
	ids := make([]int64, len(c))
	for i, r := range c {
		ids[i] = r.RoundID()
	}
	return ids
}

// Specs flattens the catalog into RoundSpecs.
func (c RoundCatalog) Specs() []RoundSpec {
	specs := make([]RoundSpec, len(c))
	for i, r := range c {
		specs[i] = SpecOf(r)
	}
	return specs
}

// CatalogFromSpecs builds a RoundCatalog, rejecting unknown types and duplicate ids.
func CatalogFromSpecs(specs []RoundSpec) (RoundCatalog, error) {
	catalog := make(RoundCatalog, 0, len(specs))
	seen := make(map[int64]struct{}, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.ID]; dup {
			return nil, fmt.Errorf("duplicate round id %d", spec.ID)
		}
		seen[spec.ID] = struct{}{}
		round, err := spec.Round()
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, round)
	}
	return catalog, nil
}

// Extends reports whether the catalog keeps every round of snapshot at its original position.
// Rounds appended after the snapshot do not count as a change; moved, inserted or removed rounds do.
func (c RoundCatalog) Extends(snapshot []int64) bool {
	order := c.Order()
	return len(order) >= len(snapshot) && slices.Equal(order[:len(snapshot)], snapshot)
}

// Job is a posting with its ordered pipeline of rounds.
type Job struct {
	ID        string
	CompanyID string
	Title     string
	Rounds    RoundCatalog
	CreatedAt time.Time
	UpdatedAt time.Time
}

type jobJSON struct {
	ID        string      `json:"id"`
	CompanyID string      `json:"company_id"`
	Title     string      `json:"title,omitempty"`
	Rounds    []RoundSpec `json:"rounds"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// MarshalJSON encodes rounds in their tagged spec form.
func (j Job) MarshalJSON() ([]byte, error) {
	return json.Marshal(jobJSON{
		ID:        j.ID,
		CompanyID: j.CompanyID,
		Title:     j.Title,
		Rounds:    j.Rounds.Specs(),
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	})
}

// UnmarshalJSON decodes tagged round specs into typed rounds.
func (j *Job) UnmarshalJSON(b []byte) error {
	var raw jobJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	rounds, err := CatalogFromSpecs(raw.Rounds)
	if err != nil {
		return err
	}
	*j = Job{
		ID:        raw.ID,
		CompanyID: raw.CompanyID,
		Title:     raw.Title,
		Rounds:    rounds,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	return nil
}

// Validate checks the job's identifiers and round catalog.
func (j *Job) Validate() error {
	if j.ID == "" {
		return errors.New("job id is required")
	}
	if j.CompanyID == "" {
		return errors.New("company id is required")
	}
	seen := make(map[int64]struct{}, len(j.Rounds))
	for _, r := range j.Rounds {
		if r == nil {
			return errors.New("round is nil")
		}
		if _, dup := seen[r.RoundID()]; dup {
			return fmt.Errorf("duplicate round id %d", r.RoundID())
		}
		seen[r.RoundID()] = struct{}{}
		if _, err := SpecOf(r).Round(); err != nil {
			return err
		}
	}
	return nil
}
