package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnlyTimePtr(t *testing.T) {
	var absent *DateOnly
	assert.Nil(t, absent.TimePtr())

	var blank DateOnly
	require.NoError(t, json.Unmarshal([]byte(`""`), &blank))
	assert.Nil(t, blank.TimePtr())

	var set DateOnly
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-02"`), &set))
	got := set.TimePtr()
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), *got)
}
