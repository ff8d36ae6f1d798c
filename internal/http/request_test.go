package http

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suivi/internal/apperror"
	"suivi/internal/core"
)

var testClock = time.Date(2025, time.April, 17, 9, 0, 0, 0, time.UTC)

func TestResolvePeriod(t *testing.T) {
	month, year, err := resolvePeriod("", 0, testClock)
	require.NoError(t, err)
	assert.Equal(t, core.MonthCode("04"), month)
	assert.Equal(t, 2025, year)

	month, year, err = resolvePeriod("3", 0, testClock)
	require.NoError(t, err)
	assert.Equal(t, core.MonthCode("03"), month, "single digits are padded")
	assert.Equal(t, 2025, year)

	month, year, err = resolvePeriod("11", 2024, testClock)
	require.NoError(t, err)
	assert.Equal(t, core.MonthCode("11"), month)
	assert.Equal(t, 2024, year)
}

func TestResolvePeriod_Invalid(t *testing.T) {
	_, _, err := resolvePeriod("13", 0, testClock)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, _, err = resolvePeriod("xx", 0, testClock)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, _, err = resolvePeriod("03", 1850, testClock)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestQueryPeriod(t *testing.T) {
	r := httptest.NewRequest("GET", "/collaborators", nil)
	_, _, present := queryPeriod(r, testClock)
	assert.False(t, present, "no filter when both params are absent")

	r = httptest.NewRequest("GET", "/collaborators?month=03", nil)
	month, year, present := queryPeriod(r, testClock)
	assert.True(t, present)
	assert.Equal(t, "03", month)
	assert.Zero(t, year)

	r = httptest.NewRequest("GET", "/collaborators?year=2024", nil)
	month, year, present = queryPeriod(r, testClock)
	assert.True(t, present)
	assert.Empty(t, month)
	assert.Equal(t, 2024, year)
}
