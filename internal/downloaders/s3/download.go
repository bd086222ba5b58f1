package s3

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/easyparts/easyparts/internal/utils"
)

func (d *S3Downloader) Download(job *utils.Job) error {
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	fileType := job.Metadata["fileType"].(string)
	profile := job.Metadata["profile"].(string)
	client, err := getS3Client(profile)
	if err != nil {
		return fmt.Errorf("error creating S3 client: %v", err)
	}
	if fileType == "folder" {
		log.Info().Str("op", "s3/download").Msgf("Starting part set download for s3://%s/%s", bucket, key)
		return d.downloadPartSet(job, bucket, key, client)
	}
	log.Info().Str("op", "s3/download").Msgf("Starting file download for s3://%s/%s", bucket, key)
	return d.downloadFile(job, bucket, key, client)
}

func (d *S3Downloader) downloadFile(job *utils.Job, bucket, key string, client *S3Client) error {
	size := job.Metadata["size"].(int64)
	progressCh := make(chan int64, 100)
	defer close(progressCh)
	go func() {
		var totalDownloaded int64
		for bytes := range progressCh {
			totalDownloaded += bytes
			if job.ProgressFunc != nil {
				job.ProgressFunc(totalDownloaded, size)
			}
		}
	}()
	return performS3Download(bucket, key, job.OutputPath, client, job.Connections, progressCh)
}

// downloadPartSet fetches every object under the prefix with parallel
// workers; a prefix maps to a whole part set on S3.
func (d *S3Downloader) downloadPartSet(job *utils.Job, bucket, prefix string, client *S3Client) error {
	objects, err := listS3Objects(bucket, prefix, client)
	if err != nil {
		return fmt.Errorf("error listing objects: %v", err)
	}
	if len(objects) == 0 {
		return fmt.Errorf("no objects found in s3://%s/%s", bucket, prefix)
	}
	log.Debug().Str("op", "s3/download").Msgf("Found %d objects to download under prefix", len(objects))
	var totalSize int64
	for _, obj := range objects {
		totalSize += obj.Size
	}

	var totalDownloaded int64
	var mu sync.Mutex
	var downloadErr error
	jobCh := make(chan s3Object, len(objects))
	for _, obj := range objects {
		jobCh <- obj
	}
	close(jobCh)
	numWorkers := min(job.Connections, len(objects))
	log.Debug().Str("op", "s3/download").Msgf("Using %d parallel workers for part set download", numWorkers)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for obj := range jobCh {
				relPath := strings.TrimPrefix(obj.Key, prefix)
				relPath = strings.TrimPrefix(relPath, "/")
				outputPath := filepath.Join(job.OutputPath, relPath)
				if err := createDirectory(filepath.Dir(outputPath)); err != nil {
					mu.Lock()
					if downloadErr == nil {
						downloadErr = fmt.Errorf("error creating directory: %v", err)
					}
					mu.Unlock()
					return
				}
				progressCh := make(chan int64, 100)
				go func(ch <-chan int64) {
					for bytes := range ch {
						downloaded := atomic.AddInt64(&totalDownloaded, bytes)
						if job.ProgressFunc != nil {
							job.ProgressFunc(downloaded, totalSize)
						}
					}
				}(progressCh)

				err := performS3Download(bucket, obj.Key, outputPath, client, 1, progressCh)
				close(progressCh)
				if err != nil {
					mu.Lock()
					if downloadErr == nil {
						downloadErr = fmt.Errorf("error downloading %s: %v", obj.Key, err)
					}
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()
	return downloadErr
}
