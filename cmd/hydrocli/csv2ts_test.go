package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

func TestResolveBeginUsesTimezone(t *testing.T) {
	// 06:00 in winter Chicago time (CST, UTC-6) is noon UTC.
	got, err := resolveBegin("2026-01-15T06:00", "America/Chicago")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC), got.UTC())

	got, err = resolveBegin("2026-01-15T06:00", "GMT")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 6, 0, 0, 0, time.UTC), got.UTC())
}

func TestResolveBeginDefaultsToNowInZone(t *testing.T) {
	got, err := resolveBegin("", "America/Chicago")
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", got.Location().String())
	assert.WithinDuration(t, time.Now(), got, 2*time.Minute)
}

func TestResolveBeginRejectsBadInput(t *testing.T) {
	_, err := resolveBegin("2026-01-15T06:00", "Not/AZone")
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))

	_, err = resolveBegin("01/15/2026 06:00", "GMT")
	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfig))
}
