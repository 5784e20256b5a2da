package loader

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const htmlFixture = `<!DOCTYPE html>
<html>
<head>
  <title>Fixture Page</title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <nav>
    <a href="/">Home</a>
    <a href="/about">About navigation link</a>
  </nav>
  <header>Site header banner</header>
  <p>The quick brown fox jumps over the lazy dog.</p>
  <aside>Unrelated sidebar content</aside>
  <footer>Copyright footer text</footer>
</body>
</html>`

func TestWebExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(htmlFixture))
	}))
	defer server.Close()

	ldr := NewDocumentLoader()

	text, err := ldr.Load(server.URL, "")
	require.NoError(t, err)

	assert.Contains(t, text, "The quick brown fox jumps over the lazy dog.")

	assert.NotContains(t, text, "About navigation link")
	assert.NotContains(t, text, "Site header banner")
	assert.NotContains(t, text, "Unrelated sidebar content")
	assert.NotContains(t, text, "Copyright footer text")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "color: red")
}

func TestWebExtractionSendsBrowserUserAgent(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer server.Close()

	ldr := NewDocumentLoader()

	_, err := ldr.Load(server.URL, "")
	require.NoError(t, err)
	assert.Equal(t, browserUserAgent, userAgent)
}

func TestWebExtractionNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	ldr := NewDocumentLoader()

	_, err := ldr.Load(server.URL, "")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestWebExtractionNetworkError(t *testing.T) {
	ldr := NewDocumentLoader()

	// Closed port, connection refused.
	_, err := ldr.Load("http://127.0.0.1:1/page", "")
	require.Error(t, err)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestWebExtractionDropsEmptyLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<div>\n\n  first line  \n\n</div><p>second line</p>"))
	}))
	defer server.Close()

	ldr := NewDocumentLoader()

	text, err := ldr.Load(server.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", text)
}
