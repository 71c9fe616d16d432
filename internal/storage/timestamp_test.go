package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6*int(time.Millisecond), time.UTC)
	assert.Equal(t, "2024-01-02T03:04:05.006Z", FormatTimestamp(ts))

	east := time.FixedZone("UTC+8", 8*3600)
	assert.Equal(t, "2024-01-02T03:04:05.006Z", FormatTimestamp(ts.In(east)))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, s := range []string{
		"2024-01-02T03:04:05.000Z",
		"Tue, 02 Jan 2024 03:04:05 GMT",
		"2024-01-02T03:04:05Z",
	} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, got.Equal(want), "%s parsed as %v", s, got)
		assert.Equal(t, time.Local, got.Location())
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}
