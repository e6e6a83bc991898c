package domain

// CompressionCodec names a supported compression algorithm.
type CompressionCodec string

// CompressionOptions configures the compression of records inside a segment.
// Every record is compressed as an independent member so a segment is a
// plain concatenation of self-contained frames.
type CompressionOptions struct {
	// Codec selects the algorithm: "gzip", "zstd" or "none".
	//
	// Default: "gzip"
	Codec CompressionCodec

	// Level defines the compression level of the selected codec.
	// gzip accepts 1 (fastest) to 9 (best), zstd accepts 1 (fastest) to 4 (best).
	// If not specified, the codec default is used.
	Level uint8
}
