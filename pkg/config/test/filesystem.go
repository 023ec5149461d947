// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test provides in-memory file systems for loader tests.
package test

import (
	"io"
	"io/fs"
	"sync"
)

// MockFS serves every opened name with OpenFunc and remembers the names.
type MockFS struct {
	OpenFunc func(name string) (fs.File, error)

	mu     sync.Mutex
	opened []string
}

// Open records name and calls OpenFunc.
func (m *MockFS) Open(name string) (fs.File, error) {
	m.mu.Lock()
	m.opened = append(m.opened, name)
	m.mu.Unlock()
	return m.OpenFunc(name)
}

// Opened returns the names opened so far.
func (m *MockFS) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

// Serve returns a MockFS handing out a fresh file with content on every open.
func Serve(content string) *MockFS {
	return &MockFS{
		OpenFunc: func(string) (fs.File, error) {
			return &MockFile{Content: []byte(content)}, nil
		},
	}
}

// MockFile is a read-only file backed by Content.
type MockFile struct {
	Content []byte
	// ReadErr is returned by Read once the content is consumed instead of io.EOF.
	ReadErr error
	// CloseFunc overrides the result of Close if set.
	CloseFunc func() error

	pos int
}

func (mf *MockFile) Read(b []byte) (int, error) {
	if mf.pos >= len(mf.Content) {
		if mf.ReadErr != nil {
			return 0, mf.ReadErr
		}
		return 0, io.EOF
	}
	n := copy(b, mf.Content[mf.pos:])
	mf.pos += n
	return n, nil
}

func (mf *MockFile) Close() error {
	if mf.CloseFunc != nil {
		return mf.CloseFunc()
	}
	return nil
}

func (mf *MockFile) Stat() (fs.FileInfo, error) {
	return nil, fs.ErrInvalid
}
