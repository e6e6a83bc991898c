package store

import (
	"encoding/hex"
	"time"

	"github.com/iamNilotpal/warcstore/internal/core/domain"
)

// decorate attaches the derived headers to a record. It is pure and runs
// outside the store lock.
func decorate(record *domain.Record, now time.Time) *domain.Entry {
	headers := make([]domain.Header, 0, 3)
	headers = append(headers, domain.Header{
		Name:  domain.HeaderPayloadDigest,
		Value: domain.DigestScheme + ":" + hex.EncodeToString(record.Digest),
	})

	if record.GuessedCharset != "" {
		headers = append(headers, domain.Header{Name: domain.HeaderGuessedCharset, Value: record.GuessedCharset})
	}

	if record.Duplicate {
		headers = append(headers, domain.Header{Name: domain.HeaderIsDuplicate, Value: "true"})
	}

	return &domain.Entry{Record: record, Headers: headers, Timestamp: now}
}
