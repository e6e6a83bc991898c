package serializer

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/iamNilotpal/warcstore/internal/adapters/checksum"
	"github.com/iamNilotpal/warcstore/internal/adapters/compression"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func newEntry(t *testing.T, rawURL, body string, headers ...domain.Header) *domain.Entry {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	resp := &http.Response{
		StatusCode:    http.StatusOK,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}

	return &domain.Entry{
		Record:    &domain.Record{URI: u, Response: resp, Digest: []byte{0xca, 0xfe}},
		Headers:   headers,
		Timestamp: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
}

func TestWarcEncoderGzipMembers(t *testing.T) {
	c, err := compression.NewGzipCompression(0)
	require.NoError(t, err)

	var sink bytes.Buffer
	enc, err := NewWarcSerializer().NewEncoder(&sink, c)
	require.NoError(t, err)

	n1, err := enc.Encode(newEntry(t, "http://example.com/a", "<html>a</html>",
		domain.Header{Name: domain.HeaderPayloadDigest, Value: "bubing:cafe"},
		domain.Header{Name: domain.HeaderIsDuplicate, Value: "true"},
	))
	require.NoError(t, err)
	n2, err := enc.Encode(newEntry(t, "http://example.com/b", "<html>b</html>"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	assert.Equal(t, int64(sink.Len()), n1+n2, "encoded sizes add up to the sink length")

	r, err := gzip.NewReader(&sink)
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	text := string(out)

	assert.Equal(t, 2, strings.Count(text, "WARC/1.0\r\n"))
	assert.Contains(t, text, "WARC-Type: response\r\n")
	assert.Contains(t, text, "WARC-Target-URI: http://example.com/a\r\n")
	assert.Contains(t, text, "WARC-Date: 2026-10-17T12:00:00Z\r\n")
	assert.Contains(t, text, "WARC-Payload-Digest: bubing:cafe\r\n")
	assert.Contains(t, text, "BUbiNG-Is-Duplicate: true\r\n")
	assert.Contains(t, text, "Content-Type: application/http;msgtype=response\r\n")
	assert.Contains(t, text, "HTTP/1.1 200 OK\r\n")
	assert.Contains(t, text, "<html>b</html>\r\n\r\n")
	assert.Less(t, strings.Index(text, "http://example.com/a"), strings.Index(text, "http://example.com/b"))
}

func TestWarcContentLengthMatchesBlock(t *testing.T) {
	c, err := compression.New(&domain.CompressionOptions{Codec: compression.None})
	require.NoError(t, err)

	var sink bytes.Buffer
	enc, err := NewWarcSerializer().NewEncoder(&sink, c)
	require.NoError(t, err)
	_, err = enc.Encode(newEntry(t, "http://example.com/", "payload"))
	require.NoError(t, err)

	head, rest, ok := strings.Cut(sink.String(), "\r\n\r\n")
	require.True(t, ok)
	block := strings.TrimSuffix(rest, "\r\n\r\n")

	var length string
	for _, line := range strings.Split(head, "\r\n") {
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			length = v
		}
	}
	n, err := strconv.Atoi(length)
	require.NoError(t, err)
	assert.Equal(t, len(block), n)
}

func TestFrameEncoderWithTrailer(t *testing.T) {
	sum, err := checksum.New(checksum.CRC32IEEE)
	require.NoError(t, err)
	c, err := compression.New(&domain.CompressionOptions{Codec: compression.None})
	require.NoError(t, err)

	var sink bytes.Buffer
	enc, err := NewFrameSerializer(sum).NewEncoder(&sink, c)
	require.NoError(t, err)

	_, err = enc.Encode(newEntry(t, "http://example.com/1", "one",
		domain.Header{Name: domain.HeaderGuessedCharset, Value: "utf-8"}))
	require.NoError(t, err)
	_, err = enc.Encode(newEntry(t, "http://example.com/2", "two"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, enc.Close(), "closing twice writes a single trailer")

	frames := decodeFrames(t, sink.Bytes())
	require.Len(t, frames, 3)

	assert.Equal(t, KindRecord, frames[0].kind)
	assert.Equal(t, "http://example.com/1", frames[0].uri)
	assert.Equal(t, []string{domain.HeaderGuessedCharset + "=utf-8"}, frames[0].headers)
	assert.Equal(t, sum.Calculate(frames[0].block), frames[0].checksum)
	assert.Equal(t, protowire.Fixed32Type, frames[0].checksumType, "crc32 fits a fixed32 field")
	assert.Contains(t, string(frames[1].block), "two")

	assert.Equal(t, KindTrailer, frames[2].kind)
	assert.Equal(t, uint64(2), frames[2].count)
	assert.Equal(t, string(checksum.CRC32IEEE), frames[2].algorithm)
}

func TestFrameEncoderWideChecksum(t *testing.T) {
	sum, err := checksum.New(checksum.SHA256)
	require.NoError(t, err)
	c, err := compression.New(&domain.CompressionOptions{Codec: compression.None})
	require.NoError(t, err)

	var sink bytes.Buffer
	enc, err := NewFrameSerializer(sum).NewEncoder(&sink, c)
	require.NoError(t, err)
	_, err = enc.Encode(newEntry(t, "http://example.com/wide", "wide"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	frames := decodeFrames(t, sink.Bytes())
	require.Len(t, frames, 2)
	assert.Equal(t, protowire.Fixed64Type, frames[0].checksumType)
	assert.Equal(t, sum.Calculate(frames[0].block), frames[0].checksum)
	assert.Equal(t, string(checksum.SHA256), frames[1].algorithm)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("arc", nil)
	assert.Error(t, err)
	assert.Error(t, Validate("arc"))
	assert.NoError(t, Validate(Frame))

	s, err := New(Warc, nil)
	require.NoError(t, err)
	assert.Equal(t, Warc, s.Format())
}

type decodedFrame struct {
	kind         uint64
	uri          string
	headers      []string
	block        []byte
	checksum     uint64
	checksumType protowire.Type
	count        uint64
	algorithm    string
}

func decodeFrames(t *testing.T, data []byte) []decodedFrame {
	t.Helper()
	var frames []decodedFrame

	for len(data) > 0 {
		size, n := protowire.ConsumeVarint(data)
		require.GreaterOrEqual(t, n, 0)
		data = data[n:]
		msg := data[:size]
		data = data[size:]

		var f decodedFrame
		for len(msg) > 0 {
			num, typ, n := protowire.ConsumeTag(msg)
			require.GreaterOrEqual(t, n, 0)
			msg = msg[n:]

			switch typ {
			case protowire.VarintType:
				v, n := protowire.ConsumeVarint(msg)
				msg = msg[n:]
				switch num {
				case FieldKind:
					f.kind = v
				case FieldRecordCount:
					f.count = v
				}
			case protowire.Fixed32Type:
				v, n := protowire.ConsumeFixed32(msg)
				msg = msg[n:]
				f.checksum, f.checksumType = uint64(v), typ
			case protowire.Fixed64Type:
				v, n := protowire.ConsumeFixed64(msg)
				msg = msg[n:]
				f.checksum, f.checksumType = v, typ
			case protowire.BytesType:
				v, n := protowire.ConsumeBytes(msg)
				msg = msg[n:]
				switch num {
				case FieldURI:
					f.uri = string(v)
				case FieldBlock:
					f.block = v
				case FieldAlgorithm:
					f.algorithm = string(v)
				case FieldHeader:
					f.headers = append(f.headers, decodeHeader(t, v))
				}
			default:
				t.Fatalf("unexpected wire type %v", typ)
			}
		}
		frames = append(frames, f)
	}
	return frames
}

func decodeHeader(t *testing.T, b []byte) string {
	t.Helper()
	var name, value string
	for len(b) > 0 {
		num, _, n := protowire.ConsumeTag(b)
		b = b[n:]
		v, n := protowire.ConsumeBytes(b)
		require.GreaterOrEqual(t, n, 0)
		b = b[n:]
		if num == FieldHeaderName {
			name = string(v)
		} else {
			value = string(v)
		}
	}
	return name + "=" + value
}
