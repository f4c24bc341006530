package ingest

import (
	"testing"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	config.Cfg = &config.Config{
		Upload: config.UploadConfig{MaxFileSizeMB: 10},
	}

	t.Run("accepts supported types", func(t *testing.T) {
		assert.NoError(t, Validate("luat.pdf", 1024))
		assert.NoError(t, Validate("hop_dong.DOCX", 1024))
		assert.NoError(t, Validate("ghi_chu.txt", 1024))
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		err := Validate("script.exe", 1024)
		require.Error(t, err)
		assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		assert.Equal(t, "unsupported_file_type", errs.CodeOf(err))
	})

	t.Run("rejects missing extension", func(t *testing.T) {
		err := Validate("README", 1024)
		require.Error(t, err)
		assert.Equal(t, "unsupported_file_type", errs.CodeOf(err))
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		err := Validate("big.pdf", 11*1024*1024)
		require.Error(t, err)
		assert.Equal(t, "file_too_large", errs.CodeOf(err))
	})

	t.Run("accepts file at the limit", func(t *testing.T) {
		assert.NoError(t, Validate("edge.pdf", 10*1024*1024))
	})
}
