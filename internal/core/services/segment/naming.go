package segment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateName builds a segment file name of the form
// store.<format>.<yyyy-MM-dd-HH-mm-ss.SSS>.<uuid>.<ext>.
// The random token keeps names distinct even when many segments are
// created within the same millisecond or across process restarts.
func GenerateName(format, extension string, now time.Time) string {
	return fmt.Sprintf("%s.%s.%s.%s.%s", NamePrefix, format, now.Format(TimestampLayout), uuid.NewString(), extension)
}

// Pattern returns the glob matching every segment of format.
func Pattern(format string) string {
	return fmt.Sprintf("%s.%s.*", NamePrefix, format)
}
