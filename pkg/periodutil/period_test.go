package periodutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	p, err := Parse("2026-02")
	require.NoError(t, err)
	assert.Equal(t, 2026, p.Year)
	assert.Equal(t, time.February, p.Month)
	assert.Equal(t, "2026-02", p.String())
}

func TestLeapYearFebruary(t *testing.T) {
	p, err := Parse("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 29, p.Days())

	p, err = Parse("2026-02")
	require.NoError(t, err)
	assert.Equal(t, 28, p.Days())
}

func TestEndIsLastInstantOfMonth(t *testing.T) {
	p, err := Parse("2026-01")
	require.NoError(t, err)
	end := p.End()
	assert.Equal(t, 31, end.Day())
	assert.Equal(t, time.January, end.Month())
}

func TestNextAndPreviousWrapYearBoundary(t *testing.T) {
	p, err := Parse("2026-12")
	require.NoError(t, err)
	assert.Equal(t, "2027-01", p.Next().String())
	assert.Equal(t, "2026-11", p.Previous().String())
}

func TestInvalidPeriod(t *testing.T) {
	_, err := Parse("2026-13")
	assert.Error(t, err)
}
