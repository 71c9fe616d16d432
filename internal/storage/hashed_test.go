package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortHash(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])[:12]
}

func TestHashedName(t *testing.T) {
	got := HashedName("css/site.css", []byte("body{}"))
	assert.Equal(t, "css/site."+shortHash("body{}")+".css", got)
	assert.Regexp(t, regexp.MustCompile(`^css/site\.[0-9a-f]{12}\.css$`), got)

	assert.Equal(t, "LICENSE."+shortHash("mit"), HashedName("LICENSE", []byte("mit")))
}

func TestHashedNamesCache(t *testing.T) {
	h := NewHashedNames(0)
	_, ok := h.Get("a.css")
	assert.False(t, ok)

	h.Set("a.css", "a.123.css")
	got, ok := h.Get("a.css")
	require.True(t, ok)
	assert.Equal(t, "a.123.css", got)
	assert.Equal(t, 1, h.Len())

	h.Forget("a.css")
	_, ok = h.Get("a.css")
	assert.False(t, ok)
}

func TestURLUsesHashedName(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStorage(t)
	_, err := s.Save(ctx, "js/app.js", strings.NewReader("alert(1)"))
	require.NoError(t, err)

	got, err := s.URL(ctx, "js/app.js?v=2#top")
	require.NoError(t, err)
	assert.Equal(t, "/static/js/app."+shortHash("alert(1)")+".js?v=2#top", got)

	_, err = s.URL(ctx, "js/missing.js")
	assert.Error(t, err)
}

func TestPostProcessRewritesCSS(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := newTestStorage(t)

	const (
		logo = "PNGDATA"
		base = "html { margin: 0 }"
		site = `@import "base.css";
body { background: url("../img/logo.png?v=1"); }
.icon { background: url(data:image/png;base64,AAAA); }
.ext { background: url(https://cdn.example.com/x.png); }
`
	)
	for name, content := range map[string]string{
		"img/logo.png": logo,
		"css/base.css": base,
		"css/site.css": site,
	} {
		_, err := s.Save(ctx, name, strings.NewReader(content))
		require.NoError(t, err)
	}

	results, err := s.PostProcess(ctx, []string{"img/logo.png", "css/site.css", "css/base.css"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := map[string]Processed{}
	for _, r := range results {
		byName[r.Original] = r
	}
	assert.False(t, byName["css/base.css"].Rewritten)
	assert.True(t, byName["css/site.css"].Rewritten)
	assert.Equal(t, "css/site."+shortHash(site)+".css", byName["css/site.css"].Hashed)

	rewritten := readRemote(t, remote, "static/"+byName["css/site.css"].Hashed)
	assert.Contains(t, rewritten, `@import "base.`+shortHash(base)+`.css"`)
	assert.Contains(t, rewritten, `url("../img/logo.`+shortHash(logo)+`.png?v=1")`)
	assert.Contains(t, rewritten, `url(data:image/png;base64,AAAA)`)
	assert.Contains(t, rewritten, `url(https://cdn.example.com/x.png)`)

	hashed, ok := s.Manifest().HashedPath("img/logo.png")
	require.True(t, ok)
	assert.Equal(t, "img/logo."+shortHash(logo)+".png", hashed)

	url, err := s.URL(ctx, "css/site.css")
	require.NoError(t, err)
	assert.Equal(t, "/static/css/site."+shortHash(site)+".css", url)
}

func TestPostProcessMissingReference(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStorage(t)
	_, err := s.Save(ctx, "css/site.css", strings.NewReader(`a { background: url("missing.png") }`))
	require.NoError(t, err)

	_, err = s.PostProcess(ctx, []string{"css/site.css"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "css/missing.png")
}

func TestHashedCopyIsReadable(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStorage(t)
	_, err := s.Save(ctx, "robots.txt", strings.NewReader("User-agent: *"))
	require.NoError(t, err)

	results, err := s.PostProcess(ctx, []string{"robots.txt"})
	require.NoError(t, err)

	rc, err := s.Open(ctx, results[0].Hashed)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "User-agent: *", string(data))
}
