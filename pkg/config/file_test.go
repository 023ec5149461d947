// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/geotracer/internal/traceroute"
	"github.com/telekom/geotracer/pkg/config/test"
)

const validTargets = `
targets:
  - address: example.com
    port: 443
  - address: 8.8.8.8
    port: 53
`

var (
	exampleCom = traceroute.Target{Address: "example.com", Port: 443}
	googleDNS  = traceroute.Target{Address: "8.8.8.8", Port: 53}
	quad9      = traceroute.Target{Address: "9.9.9.9", Port: 53}
)

func loaderConfig(path string, interval time.Duration, static ...traceroute.Target) *Config {
	return &Config{Serve: ServeConfig{
		Targets: static,
		Loader:  LoaderConfig{Path: path, Interval: interval},
	}}
}

func TestNewFileLoader(t *testing.T) {
	l := NewFileLoader(loaderConfig("/etc/geotracer/targets.yaml", time.Minute, quad9), make(chan []traceroute.Target, 1))

	assert.Equal(t, "/etc/geotracer/targets.yaml", l.config.Path)
	assert.Equal(t, []traceroute.Target{quad9}, l.static)
	assert.NotNil(t, l.cTargets)
	assert.NotNil(t, l.fsys)
}

func TestFileLoader_getTargets(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fs.FS
		want    []traceroute.Target
		wantErr bool
	}{
		{
			name: "valid file",
			fsys: test.Serve(validTargets),
			want: []traceroute.Target{exampleCom, googleDNS},
		},
		{
			name: "empty file",
			fsys: test.Serve(""),
			want: nil,
		},
		{
			name: "file does not exist",
			fsys: &test.MockFS{OpenFunc: func(string) (fs.File, error) {
				return nil, fs.ErrNotExist
			}},
			wantErr: true,
		},
		{
			name:    "malformed file",
			fsys:    test.Serve("this is not a valid yaml content"),
			wantErr: true,
		},
		{
			name:    "invalid target",
			fsys:    test.Serve("targets:\n  - address: example.com\n    port: 0\n"),
			wantErr: true,
		},
		{
			name: "read fails",
			fsys: &test.MockFS{OpenFunc: func(string) (fs.File, error) {
				return &test.MockFile{ReadErr: errors.New("i/o error")}, nil
			}},
			wantErr: true,
		},
		{
			name: "close fails",
			fsys: &test.MockFS{OpenFunc: func(string) (fs.File, error) {
				return &test.MockFile{
					Content:   []byte(validTargets),
					CloseFunc: func() error { return errors.New("failed to close file") },
				}, nil
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFileLoader(loaderConfig("conf/targets.yaml", 0), make(chan []traceroute.Target, 1))
			f.fsys = tt.fsys

			got, err := f.getTargets(t.Context())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileLoader_getTargets_opensBaseName(t *testing.T) {
	fsys := test.Serve(validTargets)
	f := NewFileLoader(loaderConfig("conf/targets.yaml", 0), make(chan []traceroute.Target, 1))
	f.fsys = fsys

	_, err := f.getTargets(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"targets.yaml"}, fsys.Opened())
}

func TestFileLoader_Run(t *testing.T) {
	t.Run("reads once without interval", func(t *testing.T) {
		cTargets := make(chan []traceroute.Target, 1)
		f := NewFileLoader(loaderConfig("targets.yaml", 0, quad9, exampleCom), cTargets)
		f.fsys = test.Serve(validTargets)

		require.NoError(t, f.Run(t.Context()))
		assert.Equal(t, []traceroute.Target{quad9, exampleCom, googleDNS}, <-cTargets, "file targets are merged into the static ones")
	})

	t.Run("static targets survive a broken file", func(t *testing.T) {
		cTargets := make(chan []traceroute.Target, 1)
		f := NewFileLoader(loaderConfig("targets.yaml", 0, quad9), cTargets)
		f.fsys = test.Serve("{{{")

		assert.Error(t, f.Run(t.Context()))
		assert.Equal(t, []traceroute.Target{quad9}, <-cTargets)
	})

	t.Run("reloads periodically", func(t *testing.T) {
		cTargets := make(chan []traceroute.Target, 1)
		f := NewFileLoader(loaderConfig("targets.yaml", 10*time.Millisecond), cTargets)
		fsys := test.Serve(validTargets)
		f.fsys = fsys

		cErr := make(chan error, 1)
		go func() { cErr <- f.Run(t.Context()) }()

		for range 3 {
			select {
			case got := <-cTargets:
				assert.Equal(t, []traceroute.Target{exampleCom, googleDNS}, got)
			case <-time.After(5 * time.Second):
				t.Fatal("targets were not reloaded")
			}
		}

		f.Shutdown(t.Context())
		select {
		case err := <-cErr:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("loader did not stop")
		}
		assert.GreaterOrEqual(t, len(fsys.Opened()), 3)
	})

	t.Run("real file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "targets.yaml")
		require.NoError(t, os.WriteFile(path, []byte(validTargets), 0o600))

		cTargets := make(chan []traceroute.Target, 1)
		f := NewFileLoader(loaderConfig(path, 0), cTargets)
		require.NoError(t, f.Run(t.Context()))
		assert.Equal(t, []traceroute.Target{exampleCom, googleDNS}, <-cTargets)
	})
}

func TestStaticLoader(t *testing.T) {
	cTargets := make(chan []traceroute.Target, 1)
	l := NewLoader(loaderConfig("", 0, quad9), cTargets)
	require.IsType(t, &StaticLoader{}, l)

	cErr := make(chan error, 1)
	go func() { cErr <- l.Run(t.Context()) }()
	assert.Equal(t, []traceroute.Target{quad9}, <-cTargets)

	l.Shutdown(t.Context())
	select {
	case err := <-cErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loader did not stop")
	}
}

func TestNewLoader(t *testing.T) {
	l := NewLoader(loaderConfig("targets.yaml", 0), make(chan []traceroute.Target, 1))
	assert.IsType(t, &FileLoader{}, l)
}
