// Package output provides implementations for output modules.
// Output modules write the rows of a dataset that are still live after the
// post-pass filters.
package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/patrickschulz/filter-data/internal/dataset"
	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/modules/filter"
)

// Output type names.
const (
	TypeText  = "text"
	TypeJSONL = "jsonl"
)

// DefaultSeparator separates x and y in text output.
const DefaultSeparator = " "

// Module represents an output module that writes rows to a destination.
type Module interface {
	// Send writes every live row of ds and returns the number of rows written.
	Send(ctx context.Context, ds *dataset.Dataset) (int, error)

	// Close flushes buffered output and releases the destination.
	Close() error
}

// Config holds the parameters shared by the output formats.
type Config struct {
	// Separator is written between x and y (text format only).
	Separator string `mapstructure:"separator"`
	// XDecimals and YDecimals are the digits after the decimal point.
	XDecimals *int `mapstructure:"xDecimals"`
	YDecimals *int `mapstructure:"yDecimals"`
	// Path is the destination file; empty or "-" means standard output.
	Path string `mapstructure:"path"`
}

func (c Config) decimals() (x, y int) {
	x, y = filter.DefaultDecimals, filter.DefaultDecimals
	if c.XDecimals != nil {
		x = *c.XDecimals
	}
	if c.YDecimals != nil {
		y = *c.YDecimals
	}
	return x, y
}

func (c Config) validate() error {
	x, y := c.decimals()
	if x < 0 || y < 0 {
		return errhandling.NewConfigurationError(fmt.Sprintf("precision must not be negative (x %d, y %d)", x, y), nil)
	}
	return nil
}

// Option configures where an output module writes.
type Option func(*destination)

// WithWriter sends output to w when no path is configured.
func WithWriter(w io.Writer) Option {
	return func(d *destination) { d.stdout = w }
}

// WithFs sets the filesystem a configured path is created on.
func WithFs(fs afero.Fs) Option {
	return func(d *destination) { d.fs = fs }
}

// destination is the buffered sink shared by the output formats. The file, if
// any, is created on first use so a failing run does not truncate it early.
type destination struct {
	fs     afero.Fs
	stdout io.Writer
	path   string

	file afero.File
	w    *bufio.Writer
}

func newDestination(path string, opts []Option) *destination {
	d := &destination{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		path:   path,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *destination) writer() (*bufio.Writer, error) {
	if d.w != nil {
		return d.w, nil
	}
	if d.path == "" || d.path == "-" {
		d.w = bufio.NewWriter(d.stdout)
		return d.w, nil
	}
	f, err := d.fs.Create(d.path)
	if err != nil {
		return nil, errhandling.NewIOError(fmt.Sprintf("could not create output file %s", d.path), err)
	}
	d.file = f
	d.w = bufio.NewWriter(f)
	return d.w, nil
}

func (d *destination) flush() error {
	if d.w == nil {
		return nil
	}
	if err := d.w.Flush(); err != nil {
		return errhandling.NewIOError("writing output", err)
	}
	return nil
}

func (d *destination) close() error {
	err := d.flush()
	if d.file != nil {
		if cerr := d.file.Close(); cerr != nil && err == nil {
			err = errhandling.NewIOError(fmt.Sprintf("closing %s", d.path), cerr)
		}
		d.file = nil
	}
	d.w = nil
	return err
}
