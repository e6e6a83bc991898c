package segment

const (
	// NamePrefix starts every segment file name.
	NamePrefix = "store"

	// TimestampLayout renders the creation time in segment names with millisecond precision.
	TimestampLayout = "2006-01-02-15-04-05.000"

	DefaultBufferSize = 1048576  // 1MB
	MinBufferSize     = 4096     // 4KB
	MaxBufferSize     = 67108864 // 64MB
)
