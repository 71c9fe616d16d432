package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{".", ""},
		{`css\site.css`, "css/site.css"},
		{"css//./site.css", "css/site.css"},
		{"css/", "css/"},
		{"a/b/../c.js", "a/c.js"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanName(tt.in), "CleanName(%q)", tt.in)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		location, name, want string
	}{
		{"static", "css/site.css", "static/css/site.css"},
		{"static/", "/css/site.css", "static/css/site.css"},
		{"", "/abs.txt", "abs.txt"},
		{"static", "css/", "static/css/"},
		{"", "", ""},
	}
	for _, tt := range tests {
		got, err := NormalizeName(tt.location, tt.name)
		require.NoError(t, err, "NormalizeName(%q, %q)", tt.location, tt.name)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeNameRejectsEscapes(t *testing.T) {
	for _, tc := range [][2]string{{"static", "../secret"}, {"", "../secret"}, {"static", "css/../../x"}} {
		_, err := NormalizeName(tc[0], tc[1])
		if !errors.Is(err, ErrSuspiciousOperation) {
			t.Fatalf("NormalizeName(%q, %q) error = %v, want ErrSuspiciousOperation", tc[0], tc[1], err)
		}
	}
}

func TestAvailableName(t *testing.T) {
	taken := map[string]bool{"css/site.css": true, "css/site_1.css": true}
	exists := func(_ context.Context, name string) (bool, error) {
		return taken[name], nil
	}

	got, err := AvailableName(context.Background(), "css/site.css", exists)
	require.NoError(t, err)
	assert.Equal(t, "css/site_2.css", got)

	got, err = AvailableName(context.Background(), "js/app.js", exists)
	require.NoError(t, err)
	assert.Equal(t, "js/app.js", got)
}

func TestAvailableNamePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := AvailableName(context.Background(), "a.txt", func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}
