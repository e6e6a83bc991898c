// Package fetch downloads URLs and hands the responses to a store. It plays
// the crawler side of the store contract: it computes the content digest,
// guesses the charset and flags duplicates before every append.
package fetch

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iamNilotpal/warcstore/internal/core/ports"
	"go.uber.org/zap"
)

const (
	DefaultWorkers   = 8
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "warcstore/1.0"

	// DefaultMaxBodySize bounds the response bodies that are archived.
	DefaultMaxBodySize = 32 << 20 // 32MB
)

// ErrBodyTooLarge is returned for responses whose body exceeds MaxBodySize.
// Such responses are not archived.
var ErrBodyTooLarge = errors.New("response body too large")

// Options configures a Fetcher.
type Options struct {
	Workers     int
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64        // Larger bodies are refused, not truncated.
	Client      *http.Client // Defaults to a client with Timeout.
	Logger      *zap.Logger
}

// Result summarizes a Run.
type Result struct {
	Fetched    uint64 // Responses archived.
	Duplicates uint64 // Archived responses flagged as duplicates.
	Failed     uint64 // URLs that could not be fetched or archived.
}

// Fetcher downloads URLs with a bounded pool of workers and appends every
// response to a store.
type Fetcher struct {
	store  ports.Store
	client *http.Client
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	seen map[string]struct{} // Hex digests already archived.

	fetched    atomic.Uint64
	duplicates atomic.Uint64
	failed     atomic.Uint64
}

// New returns a Fetcher appending to store.
func New(store ports.Store, opts Options) *Fetcher {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Fetcher{
		store:  store,
		client: client,
		opts:   opts,
		logger: opts.Logger,
		seen:   make(map[string]struct{}),
	}
}

// Run fetches every URL received on urls until the channel is closed or
// ctx is cancelled. Failures are logged and counted; Run only returns an
// error when a store failure makes further appends pointless.
func (f *Fetcher) Run(ctx context.Context, urls <-chan string) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		fatalErr error
		once     sync.Once
	)

	for range f.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case raw, ok := <-urls:
					if !ok {
						return
					}
					if err := f.Fetch(ctx, raw); err != nil && isFatal(err) {
						once.Do(func() {
							fatalErr = err
							cancel()
						})
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	return f.Result(), fatalErr
}

// Result returns the counters accumulated so far.
func (f *Fetcher) Result() Result {
	return Result{
		Fetched:    f.fetched.Load(),
		Duplicates: f.duplicates.Load(),
		Failed:     f.failed.Load(),
	}
}

// Fetch downloads one URL and appends the response to the store.
func (f *Fetcher) Fetch(ctx context.Context, raw string) error {
	uri, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || uri.Scheme == "" || uri.Host == "" {
		f.failed.Add(1)
		f.logger.Warn("skipping malformed url", zap.String("url", raw), zap.Error(err))
		return fmt.Errorf("malformed url %q", raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		f.failed.Add(1)
		return fmt.Errorf("error building request : %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.failed.Add(1)
		f.logger.Warn("fetch failed", zap.String("url", uri.String()), zap.Error(err))
		return fmt.Errorf("error fetching %s : %w", uri, err)
	}

	// One byte past the limit tells a body of exactly MaxBodySize from a longer one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodySize+1))
	resp.Body.Close()
	if err != nil {
		f.failed.Add(1)
		f.logger.Warn("reading body failed", zap.String("url", uri.String()), zap.Error(err))
		return fmt.Errorf("error reading body of %s : %w", uri, err)
	}

	if int64(len(body)) > f.opts.MaxBodySize {
		f.failed.Add(1)
		f.logger.Warn("skipping oversized response",
			zap.String("url", uri.String()),
			zap.Int64("maxBodySize", f.opts.MaxBodySize),
		)
		return fmt.Errorf("%s : %w", uri, ErrBodyTooLarge)
	}

	// The body is archived as read, already decoded by the transport.
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.TransferEncoding = nil

	digest := Digest(body)
	duplicate := f.markSeen(digest)
	charset := GuessCharset(resp.Header.Get("Content-Type"))

	if err := f.store.Append(uri, resp, duplicate, digest, charset); err != nil {
		f.failed.Add(1)
		f.logger.Error("append failed", zap.String("url", uri.String()), zap.Error(err))
		return err
	}

	f.fetched.Add(1)
	if duplicate {
		f.duplicates.Add(1)
	}
	f.logger.Debug("archived",
		zap.String("url", uri.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Bool("duplicate", duplicate),
	)
	return nil
}

// markSeen records digest and reports whether it was already present.
func (f *Fetcher) markSeen(digest []byte) bool {
	key := hex.EncodeToString(digest)

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[key]; ok {
		return true
	}
	f.seen[key] = struct{}{}
	return false
}

// Digest returns the SHA-1 digest of body.
func Digest(body []byte) []byte {
	sum := sha1.Sum(body)
	return sum[:]
}

// GuessCharset extracts the charset parameter of a Content-Type header
// value. It returns "" when none is declared.
func GuessCharset(contentType string) string {
	if contentType == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToUpper(params["charset"])
}
