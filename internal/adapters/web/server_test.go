package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRoot creates a serving root with an index page and a wasm binary.
func setupRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte("<html><body>player</body></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "player.wasm"),
		[]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, 0644))
	return dir
}

func setupTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(setupRoot(t))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func assertIsolationHeaders(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, "same-origin", resp.Header.Get("Cross-Origin-Opener-Policy"))
	assert.Equal(t, "require-corp", resp.Header.Get("Cross-Origin-Embedder-Policy"))
}

func TestServesExistingFile(t *testing.T) {
	_, ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/player.wasm")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assertIsolationHeaders(t, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, body)
	assert.Equal(t, "application/wasm", resp.Header.Get("Content-Type"))
}

func TestNotFoundStillCarriesIsolationHeaders(t *testing.T) {
	_, ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/missing.dcr")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 404, resp.StatusCode)
	assertIsolationHeaders(t, resp)
}

func TestDirectoryIndexResolution(t *testing.T) {
	_, ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assertIsolationHeaders(t, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "player")
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
}

func TestStartFailsWhenPortInUse(t *testing.T) {
	first := NewServer(setupRoot(t))
	require.NoError(t, first.Start(0))
	defer first.Stop()

	second := NewServer(setupRoot(t))
	err := second.Start(first.Port())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestStartReportsBoundPortAndURL(t *testing.T) {
	srv := NewServer(setupRoot(t))
	require.NoError(t, srv.Start(0))
	defer srv.Stop()

	assert.Greater(t, srv.Port(), 0)
	assert.Contains(t, srv.URL(), "http://localhost:")

	resp, err := http.Get(srv.URL() + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assertIsolationHeaders(t, resp)
}

func TestStopIsIdempotentAndUnblocksWait(t *testing.T) {
	srv := NewServer(setupRoot(t))
	require.NoError(t, srv.Start(0))

	srv.Stop()
	srv.Stop()

	assert.NoError(t, srv.Wait())
}
