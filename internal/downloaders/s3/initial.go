package s3

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/easyparts/easyparts/internal/utils"
)

type S3Downloader struct{}

func (d *S3Downloader) ValidateJob(job *utils.Job) error {
	bucket, key, err := parseS3URL(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["bucket"] = bucket
	job.Metadata["key"] = key
	log.Info().Str("op", "s3/initial").Msgf("job validated for s3://%s/%s", bucket, key)
	return nil
}

func (d *S3Downloader) BuildJob(job *utils.Job) error {
	bucket := job.Metadata["bucket"].(string)
	key := job.Metadata["key"].(string)
	profile, _ := job.Metadata["profile"].(string)
	if profile == "" {
		profile = "default"
	}
	client, err := getS3Client(profile)
	if err != nil {
		return fmt.Errorf("error creating S3 client: %v", err)
	}

	// A key is either one part object or a prefix holding a part set
	fileType, size, err := getS3ObjectInfo(bucket, key, client)
	if err != nil {
		return fmt.Errorf("error getting S3 object info: %v", err)
	}
	job.Metadata["fileType"] = fileType
	job.Metadata["size"] = size
	job.Metadata["profile"] = profile
	log.Debug().Str("op", "s3/initial").Msgf("Determined object type: %s, size: %d", fileType, size)

	if job.OutputPath == "" {
		if fileType == "folder" {
			segments := strings.Split(strings.TrimSuffix(key, "/"), "/")
			job.OutputPath = segments[len(segments)-1]
			if job.OutputPath == "" {
				job.OutputPath = bucket
			}
		} else {
			segments := strings.Split(key, "/")
			job.OutputPath = segments[len(segments)-1]
		}
	}

	if fileType == "folder" {
		if exists, err := directoryExists(job.OutputPath); err == nil && exists {
			job.OutputPath = utils.RenewOutputPath(job.OutputPath)
		}
	} else {
		if exists, err := fileExists(job.OutputPath); err == nil && exists {
			job.OutputPath = utils.RenewOutputPath(job.OutputPath)
		}
	}
	log.Info().Str("op", "s3/initial").Msgf("job built for s3://%s/%s", bucket, key)
	return nil
}

func parseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	segments := strings.SplitN(url, "/", 2)
	if len(segments) < 1 || segments[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	bucket := segments[0]
	key := ""
	if len(segments) > 1 {
		key = segments[1]
	}
	return bucket, key, nil
}
