package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

// pathString returns a trimmed path value or a Validation error naming field.
func pathString(r *http.Request, key, field string) (string, error) {
	v := strings.TrimSpace(r.PathValue(key))
	if v == "" {
		return "", apperrors.ValidationField(field, field+" is required")
	}
	return v, nil
}

// pathRoundID parses {roundId}. Round ids are integers and may be timestamp-sized.
func pathRoundID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("roundId"))
	if raw == "" {
		return 0, apperrors.ValidationField("round_id", "round_id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.ValidationField("round_id", "round_id must be an integer")
	}
	return id, nil
}

// parseListQuery reads application list filters from the query string. Bounds are applied by the service.
func parseListQuery(r *http.Request) (model.ApplicationListOptions, error) {
	q := r.URL.Query()
	opts := model.ApplicationListOptions{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	for _, raw := range q["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				opts.Statuses = append(opts.Statuses, model.ApplicationStatus(s))
			}
		}
	}

	var err error
	if v := q.Get("pending_review"); v != "" {
		if opts.PendingReview, err = strconv.ParseBool(v); err != nil {
			return opts, apperrors.ValidationField("pending_review", "pending_review must be a boolean")
		}
	}
	if opts.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return opts, err
	}
	if opts.Offset, err = queryInt(q.Get("offset"), "offset"); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryInt(raw, field string) (int, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.ValidationField(field, field+" must be a non-negative integer")
	}
	return n, nil
}
