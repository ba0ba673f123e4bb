package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/logger"
)

// TypeFile is the input type name used in pipeline files.
const TypeFile = "file"

// StdinPath selects standard input instead of a file.
const StdinPath = "-"

// Compression identifies how a source is encoded.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	// CompressionAuto picks gzip or zstd from the file extension.
	CompressionAuto Compression = "auto"
)

// ctxCheckInterval is the number of lines read between context checks.
const ctxCheckInterval = 1024

// FileConfig holds the parameters of a file input.
type FileConfig struct {
	Path        string      `mapstructure:"path"`
	Skip        int         `mapstructure:"skip"`
	Compression Compression `mapstructure:"compression"`
}

// FileModule reads lines from a file, a compressed file or standard input.
type FileModule struct {
	fs     afero.Fs
	stdin  io.Reader
	config FileConfig

	closers []io.Closer
}

// FileOption configures a FileModule.
type FileOption func(*FileModule)

// WithFs sets the filesystem the path is resolved against.
func WithFs(fs afero.Fs) FileOption {
	return func(m *FileModule) { m.fs = fs }
}

// WithStdin sets the reader used when the path is "-".
func WithStdin(r io.Reader) FileOption {
	return func(m *FileModule) { m.stdin = r }
}

// NewFile creates a file input module. The file is opened by ReadLines.
func NewFile(config FileConfig, opts ...FileOption) (*FileModule, error) {
	if config.Path == "" {
		return nil, errhandling.NewConfigurationError("no filename given", nil)
	}
	if config.Skip < 0 {
		return nil, errhandling.NewConfigurationError(fmt.Sprintf("skip must not be negative, got %d", config.Skip), nil)
	}
	switch config.Compression {
	case "":
		config.Compression = CompressionAuto
	case CompressionNone, CompressionGzip, CompressionZstd, CompressionAuto:
	default:
		return nil, errhandling.NewConfigurationError(fmt.Sprintf("unknown compression %q", config.Compression), nil)
	}

	m := &FileModule{
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		config: config,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Path returns the configured source path.
func (m *FileModule) Path() string {
	return m.config.Path
}

// ReadLines implements Module.
func (m *FileModule) ReadLines(ctx context.Context, fn LineFunc) (int, error) {
	r, err := m.open()
	if err != nil {
		return 0, err
	}

	br := bufio.NewReaderSize(r, 64*1024)
	lineNo := 0
	delivered := 0
	for {
		if lineNo%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return delivered, errhandling.NewIOError("reading interrupted", err)
			}
		}

		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return delivered, errhandling.NewIOError(fmt.Sprintf("reading %s", m.config.Path), readErr)
		}
		if line == "" && readErr != nil {
			break
		}

		lineNo++
		if lineNo <= m.config.Skip {
			if readErr != nil {
				break
			}
			continue
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if err := fn(lineNo, line); err != nil {
			if errors.Is(err, ErrStop) {
				return delivered, nil
			}
			return delivered, err
		}
		delivered++

		if readErr != nil {
			break
		}
	}

	logger.Debug("input read",
		slog.String("path", m.config.Path),
		slog.Int("lines", lineNo),
		slog.Int("skipped", min(lineNo, m.config.Skip)),
	)
	return delivered, nil
}

// open returns the decoded byte stream of the source.
func (m *FileModule) open() (io.Reader, error) {
	var raw io.Reader
	if m.config.Path == StdinPath {
		raw = m.stdin
	} else {
		f, err := m.fs.Open(m.config.Path)
		if err != nil {
			return nil, errhandling.NewIOError(fmt.Sprintf("could not open file %s", m.config.Path), err)
		}
		m.closers = append(m.closers, f)
		raw = f
	}

	switch m.compression() {
	case CompressionGzip:
		zr, err := gzip.NewReader(raw)
		if err != nil {
			return nil, errhandling.NewIOError(fmt.Sprintf("reading gzip stream %s", m.config.Path), err)
		}
		m.closers = append(m.closers, zr)
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(raw)
		if err != nil {
			return nil, errhandling.NewIOError(fmt.Sprintf("reading zstd stream %s", m.config.Path), err)
		}
		m.closers = append(m.closers, zstdCloser{zr})
		return zr, nil
	default:
		return raw, nil
	}
}

func (m *FileModule) compression() Compression {
	if m.config.Compression != CompressionAuto {
		return m.config.Compression
	}
	return DetectCompression(m.config.Path)
}

// DetectCompression guesses the compression of path from its extension.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// Close releases the open file and decoders. It is safe to call more than once.
func (m *FileModule) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

// zstdCloser adapts zstd.Decoder, whose Close returns nothing.
type zstdCloser struct {
	d *zstd.Decoder
}

func (c zstdCloser) Close() error {
	c.d.Close()
	return nil
}

// Verify FileModule implements Module
var _ Module = (*FileModule)(nil)
