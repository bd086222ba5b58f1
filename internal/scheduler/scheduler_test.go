package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyparts/easyparts/internal/utils"
)

type fakeDownloader struct {
	validated  atomic.Int32
	built      atomic.Int32
	downloaded atomic.Int32
	failWith   error
}

func (f *fakeDownloader) ValidateJob(job *utils.Job) error {
	f.validated.Add(1)
	return nil
}

func (f *fakeDownloader) BuildJob(job *utils.Job) error {
	f.built.Add(1)
	return nil
}

func (f *fakeDownloader) Download(job *utils.Job) error {
	f.downloaded.Add(1)
	return f.failWith
}

func TestRunProcessesAllJobs(t *testing.T) {
	fake := &fakeDownloader{}
	RegisterDownloader("fake-ok", fake)

	jobs := []utils.Job{
		{JobType: "fake-ok", URL: "https://example.com/a.part1.rar", Metadata: map[string]any{}},
		{JobType: "fake-ok", URL: "https://example.com/a.part2.rar", Metadata: map[string]any{}},
		{JobType: "fake-ok", URL: "https://example.com/a.part3.rar", Metadata: map[string]any{}},
	}
	require.NoError(t, Run(jobs, 2))
	assert.Equal(t, int32(3), fake.validated.Load())
	assert.Equal(t, int32(3), fake.built.Load())
	assert.Equal(t, int32(3), fake.downloaded.Load())
}

func TestRunReportsDownloadFailure(t *testing.T) {
	fake := &fakeDownloader{failWith: errors.New("connection reset")}
	RegisterDownloader("fake-fail", fake)

	jobs := []utils.Job{
		{JobType: "fake-fail", URL: "https://example.com/b.part1.rar", Metadata: map[string]any{}},
	}
	require.Error(t, Run(jobs, 1))
	assert.Equal(t, int32(1), fake.downloaded.Load())
}

func TestRunRejectsUnknownJobType(t *testing.T) {
	jobs := []utils.Job{
		{JobType: "carrier-pigeon", URL: "pigeon://coop/file.rar", Metadata: map[string]any{}},
	}
	require.Error(t, Run(jobs, 1))
}
