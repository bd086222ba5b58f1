package partshttp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/easyparts/easyparts/internal/utils"
)

// PerformMultiDownload splits the file into ranges, downloads them on
// parallel connections into chunk files, and assembles the result.
func PerformMultiDownload(config utils.DownloadConfig, client *utils.PartsHTTPClient, fileSize int64, progressCh chan<- int64) error {
	job := utils.DownloadJob{
		Config:    config,
		FileSize:  fileSize,
		StartTime: time.Now(),
	}

	tempDir := filepath.Join(filepath.Dir(config.OutputPath), utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return fmt.Errorf("error creating temp directory: %v", err)
	}

	chunkSize := fileSize / int64(config.Connections)
	for i := range config.Connections {
		startByte := int64(i) * chunkSize
		endByte := startByte + chunkSize - 1
		if i == config.Connections-1 {
			endByte = fileSize - 1
		}
		job.Chunks = append(job.Chunks, utils.DownloadChunk{
			ID:        i,
			StartByte: startByte,
			EndByte:   endByte,
		})
	}

	var wg sync.WaitGroup
	mutex := &sync.Mutex{}
	for i := range job.Chunks {
		wg.Add(1)
		go chunkedDownload(&job, &job.Chunks[i], client, &wg, progressCh, mutex)
	}
	wg.Wait()

	for _, chunk := range job.Chunks {
		if !chunk.Completed {
			return fmt.Errorf("chunk %d failed to complete", chunk.ID)
		}
	}
	log.Debug().Str("op", "http/multi").Msgf("All %d chunks completed for %s", len(job.Chunks), config.OutputPath)
	return assembleChunks(job)
}

// assembleChunks writes the chunk files into the final output in chunk
// ID order and verifies the total size.
func assembleChunks(job utils.DownloadJob) error {
	sort.Slice(job.TempFiles, func(i, j int) bool {
		idI, _ := extractChunkID(job.TempFiles[i])
		idJ, _ := extractChunkID(job.TempFiles[j])
		return idI < idJ
	})

	destFile, err := os.Create(job.Config.OutputPath)
	if err != nil {
		return fmt.Errorf("error creating output file: %v", err)
	}
	defer destFile.Close()

	var totalWritten int64
	for _, tempFilePath := range job.TempFiles {
		tempFile, err := os.Open(tempFilePath)
		if err != nil {
			return fmt.Errorf("error opening chunk: %v", err)
		}
		written, err := io.Copy(destFile, tempFile)
		tempFile.Close()
		if err != nil {
			return fmt.Errorf("error copying chunk: %v", err)
		}
		totalWritten += written
	}
	if totalWritten != job.FileSize {
		return fmt.Errorf("size mismatch: expected %d, got %d", job.FileSize, totalWritten)
	}
	for _, tempFilePath := range job.TempFiles {
		os.Remove(tempFilePath)
	}
	log.Info().Str("op", "http/multi").Msgf("Assembled %d chunks into %s", len(job.TempFiles), job.Config.OutputPath)
	return nil
}

func extractChunkID(filename string) (int, error) {
	matches := utils.ChunkIDRegex.FindStringSubmatch(filename)
	if len(matches) < 2 {
		return -1, errors.New("could not extract chunk ID")
	}
	return strconv.Atoi(matches[1])
}
