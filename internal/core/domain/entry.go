package domain

import (
	"net/http"
	"net/url"
	"time"
)

// Names of the derived headers attached to every archived response.
const (
	HeaderPayloadDigest  = "WARC-Payload-Digest"
	HeaderGuessedCharset = "BUbiNG-Guessed-Charset"
	HeaderIsDuplicate    = "BUbiNG-Is-Duplicate"

	// DigestScheme prefixes the hex encoded content digest.
	DigestScheme = "bubing"
)

// Record is one captured response submitted for persistence.
// Records are immutable once built. The store only borrows a record for
// the duration of a single append and never retains it afterwards.
type Record struct {
	// URI is the address the response was fetched from.
	URI *url.URL

	// Response holds the status line, headers and body of the capture.
	// The serializer consumes and closes the body.
	Response *http.Response

	// Digest is the content digest computed by the crawler.
	// It must be non-empty.
	Digest []byte

	// GuessedCharset is the charset guessed for the payload, if any.
	GuessedCharset string

	// Duplicate marks a response whose content was already archived.
	Duplicate bool
}

// Header is a single name/value pair of derived record metadata.
type Header struct {
	Name  string
	Value string
}

// Entry is a record decorated with its derived headers, ready to be
// handed to a serializer.
type Entry struct {
	// Record is the original capture.
	Record *Record

	// Headers are the derived metadata headers in emission order.
	Headers []Header

	// Timestamp is when the entry was decorated.
	Timestamp time.Time
}

// Header returns the value of the named derived header and whether it is present.
func (e *Entry) Header(name string) (string, bool) {
	for _, h := range e.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}
