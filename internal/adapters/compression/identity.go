package compression

import "io"

type identity struct{}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (identity) Member(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }

func (identity) Extension() string { return "" }

func (identity) Close() error { return nil }
