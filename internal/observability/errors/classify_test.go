package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

func TestClassify(t *testing.T) {
	assert.Empty(t, Classify(nil))
	assert.Equal(t, "concurrency_conflict",
		Classify(fmt.Errorf("save: %w", &apperrors.AppError{Code: apperrors.ErrCodeConcurrency, Message: "x"})))
	assert.Equal(t, "errors_errorstring", Classify(fmt.Errorf("wrap: %w", goerrors.New("boom"))))
	assert.Equal(t, "context_deadlineexceedederror", Classify(context.DeadlineExceeded))
}
