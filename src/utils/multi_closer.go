package utils

import (
	"errors"
	"io"
)

type MultiCloser struct {
	Closers []io.Closer
}

func (m *MultiCloser) Add(closer io.Closer) {
	m.Closers = append(m.Closers, closer)
}

func (m *MultiCloser) Close() error {
	var e error
	for _, closer := range m.Closers {
		e = errors.Join(e, closer.Close())
	}
	return e
}
