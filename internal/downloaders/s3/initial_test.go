package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://backups/sets/archive.7z.001")
	require.NoError(t, err)
	assert.Equal(t, "backups", bucket)
	assert.Equal(t, "sets/archive.7z.001", key)

	bucket, key, err = parseS3URL("s3://backups")
	require.NoError(t, err)
	assert.Equal(t, "backups", bucket)
	assert.Equal(t, "", key)

	_, _, err = parseS3URL("s3://")
	require.Error(t, err)
}
