package partshttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyparts/easyparts/internal/utils"
)

func testPayload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func newRangeServer(content []byte, disposition string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if disposition != "" {
			w.Header().Set("Content-Disposition", disposition)
		}
		http.ServeContent(w, r, "data.bin", time.Unix(0, 0), bytes.NewReader(content))
	}))
}

func drainProgress(progressCh <-chan int64) <-chan int64 {
	totalCh := make(chan int64, 1)
	go func() {
		var total int64
		for n := range progressCh {
			total += n
		}
		totalCh <- total
	}()
	return totalCh
}

func TestGetFileInfo(t *testing.T) {
	content := testPayload(2048)
	server := newRangeServer(content, `attachment; filename="report.zip"`)
	defer server.Close()

	client := utils.NewPartsHTTPClient(utils.HTTPClientConfig{})
	size, name, err := getFileInfo(server.URL, client)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.Equal(t, "report.zip", name)
}

func TestGetFileInfoNoRangeSupport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
	}))
	defer server.Close()

	client := utils.NewPartsHTTPClient(utils.HTTPClientConfig{})
	size, _, err := getFileInfo(server.URL, client)
	assert.Equal(t, utils.ErrRangeRequestsNotSupported, err)
	assert.Equal(t, int64(0), size)
}

func TestValidateJob(t *testing.T) {
	content := testPayload(128)
	server := newRangeServer(content, "")
	defer server.Close()

	d := &HTTPDownloader{}
	job := &utils.Job{URL: server.URL, Metadata: map[string]any{}}
	require.NoError(t, d.ValidateJob(job))

	job = &utils.Job{URL: "ftp://example.com/file.rar", Metadata: map[string]any{}}
	require.Error(t, d.ValidateJob(job))

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()
	job = &utils.Job{URL: missing.URL, Metadata: map[string]any{}}
	require.Error(t, d.ValidateJob(job))
}

func TestBuildJob(t *testing.T) {
	content := testPayload(4096)
	server := newRangeServer(content, `attachment; filename="movie.part1.rar"`)
	defer server.Close()

	dir := t.TempDir()
	d := &HTTPDownloader{}
	job := &utils.Job{
		URL:         server.URL,
		OutputPath:  filepath.Join(dir, "movie.part1.rar"),
		Connections: 4,
		Metadata:    map[string]any{},
	}
	require.NoError(t, d.BuildJob(job))
	assert.Equal(t, int64(len(content)), job.Metadata["fileSize"])
	assert.Equal(t, true, job.Metadata["rangeSupported"])
}

func TestBuildJobSkipsCompleteFile(t *testing.T) {
	content := testPayload(1024)
	server := newRangeServer(content, "")
	defer server.Close()

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(outputPath, content, 0644))

	d := &HTTPDownloader{}
	job := &utils.Job{
		URL:         server.URL,
		OutputPath:  outputPath,
		Connections: 2,
		Metadata:    map[string]any{},
	}
	err := d.BuildJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestPerformSimpleDownload(t *testing.T) {
	content := testPayload(64 * 1024)
	server := newRangeServer(content, "")
	defer server.Close()

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "data.bin")
	client := utils.NewPartsHTTPClient(utils.HTTPClientConfig{})
	progressCh := make(chan int64, 100)
	totalCh := drainProgress(progressCh)

	require.NoError(t, PerformSimpleDownload(server.URL, outputPath, client, progressCh))
	close(progressCh)

	got, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), <-totalCh)
}

func TestPerformSimpleDownloadResumes(t *testing.T) {
	content := testPayload(32 * 1024)
	var sawRange atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "" {
			sawRange.Store(true)
		}
		http.ServeContent(w, r, "data.bin", time.Unix(0, 0), bytes.NewReader(content))
	}))
	defer server.Close()

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "data.bin")
	tempDir := filepath.Join(dir, utils.TempDirName)
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	half := len(content) / 2
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "data.bin.part"), content[:half], 0644))

	client := utils.NewPartsHTTPClient(utils.HTTPClientConfig{})
	progressCh := make(chan int64, 100)
	totalCh := drainProgress(progressCh)

	require.NoError(t, PerformSimpleDownload(server.URL, outputPath, client, progressCh))
	close(progressCh)

	got, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.True(t, sawRange.Load())
	assert.Equal(t, int64(len(content)), <-totalCh)
}

func TestPerformMultiDownload(t *testing.T) {
	content := testPayload(256 * 1024)
	server := newRangeServer(content, "")
	defer server.Close()

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "data.bin")
	client := utils.NewPartsHTTPClient(utils.HTTPClientConfig{})
	progressCh := make(chan int64, 100)
	totalCh := drainProgress(progressCh)

	config := utils.DownloadConfig{
		URL:         server.URL,
		OutputPath:  outputPath,
		Connections: 4,
	}
	require.NoError(t, PerformMultiDownload(config, client, int64(len(content)), progressCh))
	close(progressCh)

	got, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), <-totalCh)

	// chunk temp files are removed after assembly
	entries, err := os.ReadDir(filepath.Join(dir, utils.TempDirName))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
