package output

import (
	"context"
	"log/slog"
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/patrickschulz/filter-data/internal/dataset"
	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/logger"
)

// JSONLModule writes one {"x":...,"y":...} object per live row.
//
// Reals are written with the configured number of decimals; NaN and
// infinities become null. Integers are written as integers and text as JSON
// strings.
type JSONLModule struct {
	xDecimals int
	yDecimals int
	dest      *destination
}

// NewJSONL creates a JSON-lines output module. The separator is ignored.
func NewJSONL(config Config, opts ...Option) (*JSONLModule, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	x, y := config.decimals()
	return &JSONLModule{
		xDecimals: x,
		yDecimals: y,
		dest:      newDestination(config.Path, opts),
	}, nil
}

// Send implements Module.
func (m *JSONLModule) Send(ctx context.Context, ds *dataset.Dataset) (int, error) {
	w, err := m.dest.writer()
	if err != nil {
		return 0, err
	}

	stream := jsoniter.ConfigDefault.BorrowStream(w)
	defer jsoniter.ConfigDefault.ReturnStream(stream)

	written := 0
	for row := range ds.Live() {
		if written%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return written, errhandling.NewIOError("writing interrupted", err)
			}
		}
		stream.WriteObjectStart()
		stream.WriteObjectField("x")
		writeReal(stream, row.X, m.xDecimals)
		stream.WriteMore()
		stream.WriteObjectField("y")
		writeValue(stream, row.Y, m.yDecimals)
		stream.WriteObjectEnd()
		stream.WriteRaw("\n")
		written++

		if stream.Buffered() > 32*1024 {
			if err := stream.Flush(); err != nil {
				return written, errhandling.NewIOError("writing output", err)
			}
		}
	}
	if err := stream.Flush(); err != nil {
		return written, errhandling.NewIOError("writing output", err)
	}
	if stream.Error != nil {
		return written, errhandling.NewIOError("encoding output", stream.Error)
	}
	if err := m.dest.flush(); err != nil {
		return written, err
	}

	logger.Debug("jsonl output written", slog.Int("rows", written))
	return written, nil
}

// Close implements Module.
func (m *JSONLModule) Close() error {
	return m.dest.close()
}

func writeReal(stream *jsoniter.Stream, f float64, decimals int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		stream.WriteNil()
		return
	}
	stream.WriteRaw(dataset.FormatFloat(f, decimals))
}

func writeValue(stream *jsoniter.Stream, v dataset.Value, decimals int) {
	switch v.Kind() {
	case dataset.KindInteger:
		i, _ := v.Integer()
		stream.WriteInt64(i)
	case dataset.KindText:
		s, _ := v.Text()
		stream.WriteString(s)
	default:
		f, _ := v.Real()
		writeReal(stream, f, decimals)
	}
}

// Verify JSONLModule implements Module
var _ Module = (*JSONLModule)(nil)
