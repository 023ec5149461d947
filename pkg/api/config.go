// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"net"
)

var (
	// ErrMissingAddress is returned when no listening address is configured.
	ErrMissingAddress = errors.New("listening address is required")
	// ErrMissingCert is returned when tls is enabled without certificate or key.
	ErrMissingCert = errors.New("tls requires a certificate and a key")
)

// Config configures the api server
type Config struct {
	// ListeningAddress is the host:port the server binds to.
	ListeningAddress string    `yaml:"address" mapstructure:"address"`
	Tls              TLSConfig `yaml:"tls" mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
	KeyPath  string `yaml:"keyPath" mapstructure:"keyPath"`
}

// Validate checks the listening address and the tls files.
func (c *Config) Validate() (err error) {
	if c.ListeningAddress == "" {
		err = errors.Join(err, ErrMissingAddress)
	} else if _, _, sErr := net.SplitHostPort(c.ListeningAddress); sErr != nil {
		err = errors.Join(err, sErr)
	}
	if c.Tls.Enabled && (c.Tls.CertPath == "" || c.Tls.KeyPath == "") {
		err = errors.Join(err, ErrMissingCert)
	}
	return err
}
