package output

import (
	"context"
	"log/slog"

	"github.com/patrickschulz/filter-data/internal/dataset"
	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/logger"
)

// TextModule writes one "<x><separator><y>" line per live row.
//
// x is printed with XDecimals digits after the point. y is printed with
// YDecimals digits when it is a real, as a plain integer when it is an
// integer and verbatim when it is text.
type TextModule struct {
	separator string
	xDecimals int
	yDecimals int
	dest      *destination
}

// NewText creates a text output module.
func NewText(config Config, opts ...Option) (*TextModule, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.Separator == "" {
		config.Separator = DefaultSeparator
	}
	x, y := config.decimals()
	return &TextModule{
		separator: config.Separator,
		xDecimals: x,
		yDecimals: y,
		dest:      newDestination(config.Path, opts),
	}, nil
}

// Send implements Module.
func (m *TextModule) Send(ctx context.Context, ds *dataset.Dataset) (int, error) {
	w, err := m.dest.writer()
	if err != nil {
		return 0, err
	}

	written := 0
	for row := range ds.Live() {
		if written%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return written, errhandling.NewIOError("writing interrupted", err)
			}
		}
		_, _ = w.WriteString(dataset.FormatFloat(row.X, m.xDecimals))
		_, _ = w.WriteString(m.separator)
		_, _ = w.WriteString(row.Y.Format(m.yDecimals))
		if err := w.WriteByte('\n'); err != nil {
			return written, errhandling.NewIOError("writing output", err)
		}
		written++
	}
	if err := m.dest.flush(); err != nil {
		return written, err
	}

	logger.Debug("text output written",
		slog.Int("rows", written),
		slog.Int("x_decimals", m.xDecimals),
		slog.Int("y_decimals", m.yDecimals))
	return written, nil
}

// Close implements Module.
func (m *TextModule) Close() error {
	return m.dest.close()
}

// Verify TextModule implements Module
var _ Module = (*TextModule)(nil)
