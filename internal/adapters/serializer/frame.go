package serializer

import (
	"fmt"
	"io"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
	"github.com/iamNilotpal/warcstore/pkg/pool"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of a frame message. A segment is a sequence of
// varint length-prefixed messages, closed by a trailer frame.
const (
	FieldKind        protowire.Number = 1
	FieldURI         protowire.Number = 2
	FieldTimestamp   protowire.Number = 3
	FieldHeader      protowire.Number = 4
	FieldBlock       protowire.Number = 5
	FieldChecksum    protowire.Number = 6
	FieldAlgorithm   protowire.Number = 7
	FieldRecordCount protowire.Number = 8

	FieldHeaderName  protowire.Number = 1
	FieldHeaderValue protowire.Number = 2
)

// Frame kinds.
const (
	KindRecord  uint64 = 1
	KindTrailer uint64 = 2
)

// FrameSerializer writes records as protobuf wire messages without
// generated code. The block checksum lets readers detect torn records.
type FrameSerializer struct {
	checksum ports.ChecksumPort
	buffers  *pool.BufferPool
}

func NewFrameSerializer(checksummer ports.ChecksumPort) *FrameSerializer {
	return &FrameSerializer{checksum: checksummer, buffers: pool.NewBufferPool(initialBlockSize, maxRetainedBlock)}
}

func (s *FrameSerializer) Format() domain.SerializationFormat {
	return Frame
}

func (s *FrameSerializer) Extension() string {
	return "pb"
}

func (s *FrameSerializer) NewEncoder(w io.Writer, compressor ports.CompressionPort) (ports.RecordEncoder, error) {
	if w == nil || compressor == nil {
		return nil, fmt.Errorf("frame encoder requires a sink and a compressor")
	}
	return &frameEncoder{
		sink:       &countingWriter{w: w},
		compressor: compressor,
		checksum:   s.checksum,
		buffers:    s.buffers,
	}, nil
}

type frameEncoder struct {
	sink       *countingWriter
	compressor ports.CompressionPort
	checksum   ports.ChecksumPort
	buffers    *pool.BufferPool
	records    uint64
	closed     bool
}

func (e *frameEncoder) Encode(entry *domain.Entry) (int64, error) {
	block := e.buffers.Get()
	defer e.buffers.Put(block)

	if err := entry.Record.Response.Write(block); err != nil {
		return 0, fmt.Errorf("failed to render http response : %w", err)
	}

	msg := protowire.AppendTag(nil, FieldKind, protowire.VarintType)
	msg = protowire.AppendVarint(msg, KindRecord)
	msg = protowire.AppendTag(msg, FieldURI, protowire.BytesType)
	msg = protowire.AppendString(msg, entry.Record.URI.String())
	msg = protowire.AppendTag(msg, FieldTimestamp, protowire.VarintType)
	msg = protowire.AppendVarint(msg, uint64(entry.Timestamp.UnixNano()))

	for _, h := range entry.Headers {
		var header []byte
		header = protowire.AppendTag(header, FieldHeaderName, protowire.BytesType)
		header = protowire.AppendString(header, h.Name)
		header = protowire.AppendTag(header, FieldHeaderValue, protowire.BytesType)
		header = protowire.AppendString(header, h.Value)

		msg = protowire.AppendTag(msg, FieldHeader, protowire.BytesType)
		msg = protowire.AppendBytes(msg, header)
	}

	msg = protowire.AppendTag(msg, FieldBlock, protowire.BytesType)
	msg = protowire.AppendBytes(msg, block.Bytes())

	if e.checksum != nil {
		sum := e.checksum.Calculate(block.Bytes())
		if e.checksum.Size() <= 4 {
			msg = protowire.AppendTag(msg, FieldChecksum, protowire.Fixed32Type)
			msg = protowire.AppendFixed32(msg, uint32(sum))
		} else {
			msg = protowire.AppendTag(msg, FieldChecksum, protowire.Fixed64Type)
			msg = protowire.AppendFixed64(msg, sum)
		}
	}

	n, err := e.writeFrame(msg)
	if err == nil {
		e.records++
	}
	return n, err
}

// Close appends the trailer frame carrying the record count and the
// checksum algorithm, so that a complete segment can be told apart from
// a truncated one.
func (e *frameEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	msg := protowire.AppendTag(nil, FieldKind, protowire.VarintType)
	msg = protowire.AppendVarint(msg, KindTrailer)
	msg = protowire.AppendTag(msg, FieldRecordCount, protowire.VarintType)
	msg = protowire.AppendVarint(msg, e.records)
	if e.checksum != nil {
		msg = protowire.AppendTag(msg, FieldAlgorithm, protowire.BytesType)
		msg = protowire.AppendString(msg, e.checksum.Name())
	}

	if _, err := e.writeFrame(msg); err != nil {
		return fmt.Errorf("failed to write trailer : %w", err)
	}
	return nil
}

func (e *frameEncoder) writeFrame(msg []byte) (int64, error) {
	staging := e.buffers.Get()
	defer e.buffers.Put(staging)

	prefix := protowire.AppendVarint(nil, uint64(len(msg)))
	return writeMember(e.sink, e.compressor, staging, prefix, msg)
}
