package serializer

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
	"github.com/iamNilotpal/warcstore/pkg/pool"
)

const (
	warcVersion      = "WARC/1.0"
	crlf             = "\r\n"
	httpResponseType = "application/http;msgtype=response"

	initialBlockSize = 32 * 1024
	maxRetainedBlock = 4 * 1024 * 1024
)

// WarcSerializer writes WARC/1.0 response records.
type WarcSerializer struct {
	buffers *pool.BufferPool
}

func NewWarcSerializer() *WarcSerializer {
	return &WarcSerializer{buffers: pool.NewBufferPool(initialBlockSize, maxRetainedBlock)}
}

func (s *WarcSerializer) Format() domain.SerializationFormat {
	return Warc
}

func (s *WarcSerializer) Extension() string {
	return "warc"
}

func (s *WarcSerializer) NewEncoder(w io.Writer, compressor ports.CompressionPort) (ports.RecordEncoder, error) {
	if w == nil || compressor == nil {
		return nil, fmt.Errorf("warc encoder requires a sink and a compressor")
	}
	return &warcEncoder{sink: &countingWriter{w: w}, compressor: compressor, buffers: s.buffers}, nil
}

type warcEncoder struct {
	sink       *countingWriter
	compressor ports.CompressionPort
	buffers    *pool.BufferPool
}

// Encode renders the HTTP block first so that Content-Length is known,
// then emits header and block as a single member.
func (e *warcEncoder) Encode(entry *domain.Entry) (int64, error) {
	block := e.buffers.Get()
	defer e.buffers.Put(block)

	if err := entry.Record.Response.Write(block); err != nil {
		return 0, fmt.Errorf("failed to render http response : %w", err)
	}

	head := e.buffers.Get()
	defer e.buffers.Put(head)

	writeField := func(name, value string) {
		head.WriteString(name)
		head.WriteString(": ")
		head.WriteString(value)
		head.WriteString(crlf)
	}

	head.WriteString(warcVersion + crlf)
	writeField("WARC-Type", "response")
	writeField("WARC-Record-ID", "<urn:uuid:"+uuid.NewString()+">")
	writeField("WARC-Date", entry.Timestamp.UTC().Format(time.RFC3339))
	writeField("WARC-Target-URI", entry.Record.URI.String())
	writeField("Content-Type", httpResponseType)
	for _, h := range entry.Headers {
		writeField(h.Name, h.Value)
	}
	writeField("Content-Length", strconv.Itoa(block.Len()))
	head.WriteString(crlf)

	staging := e.buffers.Get()
	defer e.buffers.Put(staging)

	return writeMember(e.sink, e.compressor, staging, head.Bytes(), block.Bytes(), []byte(crlf+crlf))
}

// WARC has no container trailer.
func (e *warcEncoder) Close() error {
	return nil
}
