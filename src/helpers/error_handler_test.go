package helpers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseClassifiesErrors(t *testing.T) {
	h := NewErrorHandler(logger.NewNopLogger("test"))

	d, ok := h.Diagnose("trade", NewSchemaError("trade", "Partners"))
	require.True(t, ok)
	assert.Equal(t, models.DiagSchema, d.Kind)
	assert.Equal(t, "Partners", d.Column)
	assert.Equal(t, models.SeverityWarning, d.Severity)

	wrapped := fmt.Errorf("loading: %w", NewNetworkError("GET failed", errors.New("503")))
	d, ok = h.Diagnose("index", wrapped)
	require.True(t, ok)
	assert.Equal(t, models.DiagFetch, d.Kind)
	assert.Contains(t, d.Message, "503")

	d, ok = h.Diagnose("index", NewParseError("Price", 4, "n/a", nil))
	require.True(t, ok)
	assert.Equal(t, models.DiagParse, d.Kind)
	assert.Equal(t, 4, d.Row)

	_, ok = h.Diagnose("panel", NewAlignmentError("duplicate month %s", "2020-01"))
	assert.False(t, ok)
	_, ok = h.Diagnose("panel", nil)
	assert.False(t, ok)

	assert.Equal(t, 3, h.ErrorCount)
	h.ResetErrorCount()
	assert.Equal(t, 0, h.ErrorCount)
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	res, err := RetryWithBackoff(context.Background(), nil, "fetch", 2, time.Millisecond, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffZeroRetries(t *testing.T) {
	calls := 0
	_, err := RetryWithBackoff(context.Background(), nil, "fetch", 0, time.Millisecond, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoffStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RetryWithBackoff(ctx, nil, "fetch", 5, time.Hour, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAlignmentErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("compare: %w", NewAlignmentError("months not increasing"))
	assert.True(t, IsAlignmentError(err))
	assert.False(t, IsAlignmentError(errors.New("other")))
}
