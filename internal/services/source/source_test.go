package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Egham-7/numseq/internal/models"
	"github.com/Egham-7/numseq/internal/services/sequence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func appErrorType(t *testing.T, err error) models.ErrorType {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Type
}

func TestFileOpenerReadsLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "numbers.txt", "5\n4\n3\n2\n1\n")

	svc := NewService(models.SourceConfig{})
	opener, err := svc.FileOpener(path)
	require.NoError(t, err)
	assert.Equal(t, models.SourceKindFile, opener.Kind())

	result, err := sequence.Execute(context.Background(), sequence.OperationDecreasing, svc.Lines(opener))
	require.NoError(t, err)
	assert.Equal(t, sequence.RunSet{{5, 4, 3, 2, 1}}, result.Runs)

	// a second consumption opens the file again
	result, err = sequence.Execute(context.Background(), sequence.OperationMax, svc.Lines(opener))
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Int)
}

func TestFileOpenerErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "numbers.csv", "1\n")

	svc := NewService(models.SourceConfig{BaseDir: dir, AllowedExtensions: []string{".txt"}})

	_, err := svc.FileOpener("")
	assert.Equal(t, models.ErrorTypeValidation, appErrorType(t, err))

	_, err = svc.FileOpener("missing.txt")
	assert.Equal(t, models.ErrorTypeNotFound, appErrorType(t, err))

	_, err = svc.FileOpener("../outside.txt")
	assert.Equal(t, models.ErrorTypeValidation, appErrorType(t, err))

	_, err = svc.FileOpener("numbers.csv")
	assert.Equal(t, models.ErrorTypeValidation, appErrorType(t, err))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o700))
	_, err = svc.FileOpener("nested.txt")
	assert.Equal(t, models.ErrorTypeValidation, appErrorType(t, err))
}

func TestFileOpenerRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "numbers.txt", "1\n2\n")

	svc := NewService(models.SourceConfig{BaseDir: dir})
	opener, err := svc.FileOpener("numbers.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "numbers.txt"), opener.Name())
}

func TestLinesReportsDeletedFileAsNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "numbers.txt", "1\n")

	svc := NewService(models.SourceConfig{})
	opener, err := svc.FileOpener(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = sequence.Execute(context.Background(), sequence.OperationMax, svc.Lines(opener))
	assert.Equal(t, models.ErrorTypeNotFound, appErrorType(t, err))
}

func TestLinesReportsLongLineAsSourceError(t *testing.T) {
	svc := NewService(models.SourceConfig{MaxLineBytes: 8})
	opener := BytesOpener("body", []byte("1234567890123\n"))

	_, err := sequence.Execute(context.Background(), sequence.OperationMax, svc.Lines(opener))
	assert.Equal(t, models.ErrorTypeSource, appErrorType(t, err))
}

func TestChecksum(t *testing.T) {
	a, err := Checksum(context.Background(), BytesOpener("a", []byte("1\n2\n3\n")))
	require.NoError(t, err)
	b, err := Checksum(context.Background(), BytesOpener("b", []byte("1\n2\n3\n")))
	require.NoError(t, err)
	c, err := Checksum(context.Background(), BytesOpener("c", []byte("1\n2\n4\n")))
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Checksum(ctx, BytesOpener("a", nil))
	assert.ErrorIs(t, err, context.Canceled)
}
