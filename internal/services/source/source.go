// Package source opens the line sources the sequence engine consumes: files on the
// server, multipart uploads and raw request bodies. Every source can be opened more
// than once, so the checksum and the computation each read their own copy.
package source

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Egham-7/numseq/internal/models"
	"github.com/Egham-7/numseq/internal/services/sequence"
	"github.com/Egham-7/numseq/internal/utils"

	"github.com/cespare/xxhash/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Opener gives access to the bytes of one source
type Opener interface {
	Open() (io.ReadCloser, error)
	// Kind is one of the models.SourceKind* constants
	Kind() string
	// Name identifies the source in logs (path or upload file name)
	Name() string
}

// Service builds openers and line sources according to the source configuration
type Service struct {
	cfg models.SourceConfig
}

// NewService creates a new source service
func NewService(cfg models.SourceConfig) *Service {
	return &Service{cfg: cfg}
}

// FileOpener validates path and returns an opener for the file it names.
func (s *Service) FileOpener(path string) (Opener, error) {
	if strings.TrimSpace(path) == "" {
		return nil, models.NewValidationError("file_path is required", nil)
	}

	resolved, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}

	if len(s.cfg.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(resolved))
		if !slices.Contains(s.cfg.AllowedExtensions, ext) {
			return nil, models.NewValidationError(fmt.Sprintf("file extension %q is not allowed", ext), nil)
		}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.NewNotFoundError(err)
		}
		return nil, models.NewSourceError(err)
	}
	if info.IsDir() {
		return nil, models.NewValidationError("file_path points to a directory", nil)
	}

	return &fileOpener{path: resolved}, nil
}

// resolvePath confines path to the configured base directory, if any
func (s *Service) resolvePath(path string) (string, error) {
	clean := filepath.Clean(path)
	if s.cfg.BaseDir == "" {
		return clean, nil
	}

	base, err := filepath.Abs(s.cfg.BaseDir)
	if err != nil {
		return "", models.NewInternalError("invalid source base directory", err)
	}

	candidate := clean
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, candidate)
	}

	rel, err := filepath.Rel(base, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", models.NewValidationError("file_path is outside the allowed directory", err)
	}
	return candidate, nil
}

// MultipartOpener wraps an uploaded file
func MultipartOpener(header *multipart.FileHeader) Opener {
	return &multipartOpener{header: header}
}

// BytesOpener wraps an in-memory payload
func BytesOpener(name string, data []byte) Opener {
	return &bytesOpener{name: name, data: data}
}

// Lines returns a LineSource that opens o on first iteration and closes it when done.
// Open and read failures are reported as source errors.
func (s *Service) Lines(o Opener) sequence.LineSource {
	return func(yield func(string, error) bool) {
		rc, err := o.Open()
		if err != nil {
			yield("", openError(err))
			return
		}
		defer func() {
			if err := rc.Close(); err != nil {
				fiberlog.Warnf("Failed to close %s source %s: %v", o.Kind(), o.Name(), err)
			}
		}()

		for line, err := range sequence.ScanLines(rc, s.cfg.MaxLineBytes) {
			if err != nil {
				yield("", models.NewSourceError(err))
				return
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

// Checksum returns the hex xxhash64 digest of the content of o.
func Checksum(ctx context.Context, o Opener) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := o.Open()
	if err != nil {
		return "", openError(err)
	}
	defer rc.Close()

	digest := xxhash.New()
	if _, err := utils.Copy(digest, rc); err != nil {
		return "", models.NewSourceError(err)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func openError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewNotFoundError(err)
	}
	return models.NewSourceError(err)
}

type fileOpener struct {
	path string
}

func (f *fileOpener) Open() (io.ReadCloser, error) {
	return os.Open(f.path) // #nosec G304 - path is validated by FileOpener
}

func (f *fileOpener) Kind() string { return models.SourceKindFile }
func (f *fileOpener) Name() string { return f.path }

type multipartOpener struct {
	header *multipart.FileHeader
}

func (m *multipartOpener) Open() (io.ReadCloser, error) {
	return m.header.Open()
}

func (m *multipartOpener) Kind() string { return models.SourceKindMultipart }
func (m *multipartOpener) Name() string { return m.header.Filename }

type bytesOpener struct {
	name string
	data []byte
}

func (b *bytesOpener) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (b *bytesOpener) Kind() string { return models.SourceKindRaw }
func (b *bytesOpener) Name() string { return b.name }
