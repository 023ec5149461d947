// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestManager_GetRegistry(t *testing.T) {
	tests := []struct {
		name     string
		registry *prometheus.Registry
		want     *prometheus.Registry
	}{
		{
			name:     "simple registry",
			registry: prometheus.NewRegistry(),
			want:     prometheus.NewRegistry(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &manager{
				registry: tt.registry,
			}
			if got := m.GetRegistry(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("manager.GetRegistry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_RegistersBuildInfo(t *testing.T) {
	m := New(Config{})

	families, err := m.GetRegistry().Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != buildInfoMetricName {
			continue
		}
		found = true
		require.Len(t, mf.GetMetric(), 1)
		assert.InDelta(t, 1, mf.GetMetric()[0].GetGauge().GetValue(), 0)
		labels := map[string]string{}
		for _, l := range mf.GetMetric()[0].GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		assert.Equal(t, "dev", labels["version"])
		assert.NotEmpty(t, labels["goversion"])
	}
	assert.True(t, found, "build info metric must be registered")

	t.Run("Register a collector", func(t *testing.T) {
		m.GetRegistry().MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{Name: "TEST_GAUGE"}))
	})
}

func TestManager_InitTracing(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "success - stdout exporter",
			config: Config{Enabled: true, Exporter: STDOUT},
		},
		{
			name:   "success - otlp http exporter",
			config: Config{Enabled: true, Exporter: HTTP, Url: "http://localhost:4318"},
		},
		{
			name:   "success - otlp grpc exporter with token",
			config: Config{Enabled: true, Exporter: GRPC, Url: "http://localhost:4317", Token: "my-super-secret-token"},
		},
		{
			name:   "success - otlp grpc exporter with tls",
			config: Config{Enabled: true, Exporter: GRPC, Url: "https://localhost:4317", TLS: TLSConfig{Enabled: true}},
		},
		{
			name:   "success - no exporter",
			config: Config{Enabled: true, Exporter: NOOP},
		},
		{
			name:    "failure - unsupported exporter",
			config:  Config{Enabled: true, Exporter: "unsupported"},
			wantErr: true,
		},
		{
			name:    "failure - unreadable certificate",
			config:  Config{Enabled: true, Exporter: HTTP, Url: "https://localhost:4318", TLS: TLSConfig{Enabled: true, CertPath: "/does/not/exist.pem"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.config)
			err := m.InitTracing(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
			assert.True(t, ok, "InitTracing must install an sdk tracer provider, got %T", otel.GetTracerProvider())

			assert.NoError(t, m.Shutdown(context.Background()))
		})
	}
}

func TestManager_InitTracing_disabled(t *testing.T) {
	m := New(Config{Enabled: false, Exporter: GRPC})
	require.NoError(t, m.InitTracing(context.Background()))
	assert.Nil(t, m.(*manager).tp)
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestConfig_Validate(t *testing.T) {
	certPath := writeTestCert(t)

	tests := []struct {
		name    string
		config  Config
		wantErr []error
	}{
		{name: "stdout", config: Config{Exporter: STDOUT}},
		{name: "noop", config: Config{Exporter: NOOP}},
		{name: "grpc with url", config: Config{Exporter: GRPC, Url: "http://collector:4317"}},
		{name: "http with custom certificate", config: Config{Exporter: HTTP, Url: "https://collector:4318", TLS: TLSConfig{Enabled: true, CertPath: certPath}}},
		{name: "grpc without url", config: Config{Exporter: GRPC}, wantErr: []error{ErrMissingURL}},
		{name: "http with invalid url", config: Config{Exporter: HTTP, Url: "collector"}, wantErr: []error{ErrInvalidURL}},
		{name: "unknown exporter", config: Config{Exporter: "zipkin"}},
		{
			name:    "missing certificate and url",
			config:  Config{Exporter: HTTP, TLS: TLSConfig{Enabled: true, CertPath: filepath.Join(t.TempDir(), "missing.pem")}},
			wantErr: []error{ErrMissingURL, ErrInvalidCertPath},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(t.Context())
			if tt.config.Exporter.Validate() != nil {
				assert.Error(t, err)
				return
			}
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestTLSConfig(t *testing.T) {
	t.Run("system pool", func(t *testing.T) {
		cfg, err := tlsConfig(TLSConfig{Enabled: true})
		require.NoError(t, err)
		assert.Nil(t, cfg.RootCAs)
	})

	t.Run("custom certificate", func(t *testing.T) {
		cfg, err := tlsConfig(TLSConfig{Enabled: true, CertPath: writeTestCert(t)})
		require.NoError(t, err)
		assert.NotNil(t, cfg.RootCAs)
	})

	t.Run("not a certificate", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))
		_, err := tlsConfig(TLSConfig{Enabled: true, CertPath: path})
		assert.ErrorIs(t, err, ErrInvalidCertPath)
	})
}

// writeTestCert writes a self-signed certificate and returns its path.
func writeTestCert(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "collector"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IsCA:         true,
		KeyUsage:     x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,

		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	return path
}
