package segment

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iamNilotpal/warcstore/internal/adapters/compression"
	"github.com/iamNilotpal/warcstore/internal/adapters/fs"
	"github.com/iamNilotpal/warcstore/internal/adapters/serializer"
	"github.com/iamNilotpal/warcstore/internal/core/domain"
	"github.com/iamNilotpal/warcstore/internal/core/ports"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, dir string) *Config {
	t.Helper()
	return &Config{
		Directory:          dir,
		BufferSize:         4096,
		Serializer:         serializer.NewWarcSerializer(),
		CompressionOptions: compression.DefaultOptions(),
		FileSystem:         fs.NewLocalFileSystem(),
		Now:                time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
	}
}

func testEntry(t *testing.T, rawURL, body string) *domain.Entry {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return &domain.Entry{
		Record: &domain.Record{
			URI:    u,
			Digest: []byte{1, 2, 3},
			Response: &http.Response{
				StatusCode:    http.StatusOK,
				ProtoMajor:    1,
				ProtoMinor:    1,
				Header:        http.Header{},
				Body:          io.NopCloser(strings.NewReader(body)),
				ContentLength: int64(len(body)),
			},
		},
		Timestamp: time.Now(),
	}
}

func readGzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := gzip.NewReader(f)
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestOpenAppendClose(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(testConfig(t, dir))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(s.Path()))
	assert.True(t, strings.HasPrefix(s.Name(), "store.warc.2026-10-17-08-00-00.000."))
	assert.True(t, strings.HasSuffix(s.Name(), ".gz"))

	for _, u := range []string{"http://a.example/", "http://b.example/", "http://c.example/"} {
		n, err := s.Append(testEntry(t, u, "body of "+u))
		require.NoError(t, err)
		assert.Positive(t, n)
	}

	info := s.Info()
	assert.Equal(t, uint64(3), info.Records)
	assert.Positive(t, info.Size)
	assert.False(t, info.Closed)

	require.NoError(t, s.Close())
	assert.True(t, s.Info().Closed)

	text := readGzip(t, s.Path())
	a := strings.Index(text, "WARC-Target-URI: http://a.example/")
	b := strings.Index(text, "WARC-Target-URI: http://b.example/")
	c := strings.Index(text, "WARC-Target-URI: http://c.example/")
	assert.True(t, a >= 0 && a < b && b < c, "records keep call order")
}

func TestAppendAfterClose(t *testing.T) {
	s, err := Open(testConfig(t, t.TempDir()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Append(testEntry(t, "http://late.example/", "x"))
	assert.ErrorIs(t, err, ErrSegmentClosed)
	assert.ErrorIs(t, s.Close(), ErrSegmentClosed)
	assert.ErrorIs(t, s.Flush(false), ErrSegmentClosed)
}

func TestFlushMakesBytesVisible(t *testing.T) {
	s, err := Open(testConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Append(testEntry(t, "http://a.example/", "x"))
	require.NoError(t, err)
	require.NoError(t, s.Flush(true))

	stat, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, s.Info().Size, stat.Size())
}

func TestConcurrentAppendsAreFullyFramed(t *testing.T) {
	s, err := Open(testConfig(t, t.TempDir()))
	require.NoError(t, err)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := s.Append(testEntry(t, "http://w.example/", strings.Repeat("x", 100*(w+1))))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()
	require.NoError(t, s.Close())

	// Decoding the whole multistream succeeds only if every member is intact.
	text := readGzip(t, s.Path())
	assert.Equal(t, workers*perWorker, strings.Count(text, "WARC/1.0\r\n"))
}

func TestDrainWaitsForRetainedWriters(t *testing.T) {
	s, err := Open(testConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer s.Close()

	s.Retain()
	drained := make(chan struct{})
	go func() {
		s.Drain()
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("drain returned while a writer was retained")
	case <-time.After(20 * time.Millisecond):
	}

	s.Release()
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("drain did not return after release")
	}
}

// closedFileSystem hands out files that are already closed so every
// write that reaches the file fails.
type closedFileSystem struct{ ports.FileSystemPort }

func (c closedFileSystem) CreateFile(path string, force bool) (*os.File, error) {
	f, err := c.FileSystemPort.CreateFile(path, force)
	if err != nil {
		return nil, err
	}
	return f, f.Close()
}

func TestWriteFailureMarksSegmentBroken(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.FileSystem = closedFileSystem{fs.NewLocalFileSystem()}
	cfg.CompressionOptions = &domain.CompressionOptions{Codec: compression.None}

	s, err := Open(cfg)
	require.NoError(t, err)

	// Larger than the buffer, so bufio writes straight through to the file.
	_, err = s.Append(testEntry(t, "http://big.example/", strings.Repeat("y", 3*4096)))
	require.Error(t, err)
	assert.True(t, s.Broken())
	assert.Zero(t, s.Info().Records)

	assert.Error(t, s.Close(), "closing a file that is already closed fails")
}

type failingEncoder struct{}

func (failingEncoder) Encode(*domain.Entry) (int64, error) { return 0, errors.New("render failed") }
func (failingEncoder) Close() error                        { return nil }

type failingSerializer struct{ ports.SerializerPort }

func (failingSerializer) NewEncoder(io.Writer, ports.CompressionPort) (ports.RecordEncoder, error) {
	return failingEncoder{}, nil
}

func TestRenderFailureKeepsSegmentUsable(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Serializer = failingSerializer{serializer.NewWarcSerializer()}

	s, err := Open(cfg)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Append(testEntry(t, "http://a.example/", "x"))
	require.Error(t, err)
	assert.False(t, s.Broken())
}

func TestOpenValidatesConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)

	_, err = Open(&Config{Directory: t.TempDir()})
	assert.Error(t, err)

	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))
	_, err = Open(cfg)
	assert.Error(t, err, "directory does not exist")
}

type encoderlessSerializer struct{ ports.SerializerPort }

func (encoderlessSerializer) NewEncoder(io.Writer, ports.CompressionPort) (ports.RecordEncoder, error) {
	return nil, errors.New("no encoder")
}

func TestOpenRemovesFileWhenEncoderFails(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Serializer = encoderlessSerializer{serializer.NewWarcSerializer()}

	_, err := Open(cfg)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no empty segment is left behind")
}
