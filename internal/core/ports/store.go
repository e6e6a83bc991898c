package ports

import (
	"net/http"
	"net/url"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
)

// Store is the contract consumed by crawler workers.
type Store interface {
	// Append persists one captured response.
	Append(uri *url.URL, response *http.Response, duplicate bool, digest []byte, charset string) error

	// AppendRecord persists an already built record.
	AppendRecord(record *domain.Record) error

	// Close finalizes the active segment. The store is terminal afterwards.
	Close() error
}
