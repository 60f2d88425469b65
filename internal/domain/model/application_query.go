package model

import (
	"strings"

	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

const (
	// DefaultApplicationPageSize is used when ApplicationListOptions.Limit is zero.
	DefaultApplicationPageSize = 50
	// MaxApplicationPageSize caps ApplicationListOptions.Limit.
	MaxApplicationPageSize = 200
)

// ApplicationListOptions filters the applications of one job for recruiter review.
type ApplicationListOptions struct {
	JobID    string
	Statuses []ApplicationStatus // Optional; any of
	// PendingReview keeps applications holding at least one Pending round result.
	PendingReview bool
	SortBy        string // "updated_at" (default) or "created_at"
	SortOrder     string // "desc" (default) or "asc"
	Limit         int
	Offset        int
}

// Normalize applies defaults and bounds.
func (o *ApplicationListOptions) Normalize() {
	o.JobID = strings.TrimSpace(o.JobID)
	o.SortBy = strings.ToLower(strings.TrimSpace(o.SortBy))
	if o.SortBy == "" {
		o.SortBy = "updated_at"
	}
	o.SortOrder = strings.ToLower(strings.TrimSpace(o.SortOrder))
	if o.SortOrder == "" {
		o.SortOrder = "desc"
	}
	if o.Limit <= 0 {
		o.Limit = DefaultApplicationPageSize
	}
	if o.Limit > MaxApplicationPageSize {
		o.Limit = MaxApplicationPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Validate normalizes o and rejects unknown statuses and sort keys.
func (o *ApplicationListOptions) Validate() error {
	o.Normalize()
	if o.JobID == "" {
		return apperrors.ValidationField("job_id", "job_id is required")
	}
	for _, s := range o.Statuses {
		if !s.Valid() {
			return apperrors.ValidationField("status", "unknown application status "+string(s))
		}
	}
	if o.SortBy != "updated_at" && o.SortBy != "created_at" {
		return apperrors.ValidationField("sort_by", "sort_by must be updated_at or created_at")
	}
	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		return apperrors.ValidationField("sort_order", "sort_order must be asc or desc")
	}
	return nil
}

// ApplicationPage is one page of a job's applications.
type ApplicationPage struct {
	Applications []Application `json:"applications"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}
