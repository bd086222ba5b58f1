package scheduler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	partshttp "github.com/easyparts/easyparts/internal/downloaders/http"
	"github.com/easyparts/easyparts/internal/downloaders/s3"
	"github.com/easyparts/easyparts/internal/output"
	"github.com/easyparts/easyparts/internal/utils"
)

// downloaderRegistry maps job types to their downloader implementations
var downloaderRegistry = map[string]utils.Downloader{
	"http": &partshttp.HTTPDownloader{},
	"s3":   &s3.S3Downloader{},
}

// Run executes the given jobs on numWorkers parallel workers and
// reports progress through the output manager. It returns an error if
// any job failed.
func Run(jobs []utils.Job, numWorkers int) error {
	outputMgr := output.NewManager()
	outputMgr.StartDisplay()

	jobCh := make(chan utils.Job, len(jobs))
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			processJobs(jobCh, outputMgr)
		}()
	}
	wg.Wait()
	outputMgr.StopDisplay()

	if outputMgr.HasErrors() {
		return fmt.Errorf("one or more downloads failed")
	}
	return nil
}

func processJobs(jobCh <-chan utils.Job, outputMgr *output.Manager) {
	for job := range jobCh {
		job.ID = uuid.NewString()
		funcID := outputMgr.RegisterFunction(job.URL)

		downloader, exists := downloaderRegistry[job.JobType]
		if !exists {
			outputMgr.ReportError(funcID, fmt.Errorf("unknown job type: %s", job.JobType))
			outputMgr.SetMessage(funcID, fmt.Sprintf("Error: Unknown job type %s", job.JobType))
			continue
		}

		outputMgr.SetStatus(funcID, "pending")
		outputMgr.SetMessage(funcID, fmt.Sprintf("Validating %s job", job.JobType))
		if err := downloader.ValidateJob(&job); err != nil {
			outputMgr.ReportError(funcID, fmt.Errorf("validation failed: %v", err))
			outputMgr.SetMessage(funcID, fmt.Sprintf("Validation failed for %s", job.URL))
			continue
		}

		outputMgr.SetMessage(funcID, fmt.Sprintf("Building %s job", job.JobType))
		if err := downloader.BuildJob(&job); err != nil {
			outputMgr.ReportError(funcID, fmt.Errorf("build failed: %v", err))
			outputMgr.SetMessage(funcID, fmt.Sprintf("Build failed for %s", job.URL))
			continue
		}

		switch job.ProgressType {
		case "progress":
			job.ProgressFunc = func(downloaded, total int64) {
				outputMgr.AddProgressBarToStream(funcID, downloaded, total,
					fmt.Sprintf("%s / %s", utils.FormatBytes(uint64(downloaded)), utils.FormatBytes(uint64(max(total, 0)))))
			}
		case "stream":
			job.StreamFunc = func(line string) {
				outputMgr.AddStreamLine(funcID, line)
			}
		}

		outputMgr.SetMessage(funcID, fmt.Sprintf("Downloading %s", job.OutputPath))
		if err := downloader.Download(&job); err != nil {
			outputMgr.ReportError(funcID, fmt.Errorf("download failed: %v", err))
			outputMgr.SetMessage(funcID, fmt.Sprintf("Download failed for %s", job.OutputPath))
			continue
		}

		outputMgr.Complete(funcID, fmt.Sprintf("Completed %s", job.OutputPath))
	}
}

// RegisterDownloader allows tests and future sources to extend the
// registry.
func RegisterDownloader(jobType string, d utils.Downloader) {
	downloaderRegistry[jobType] = d
}
