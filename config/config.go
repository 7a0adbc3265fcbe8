// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config implements runtime configuration file parsing and validation.
package config

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/inkpad-io/inkpad/util"
)

const (
	defaultMaxBundleSizeBytes = 50 * 1 << 20
	defaultConnectTimeoutMS   = 30000
	defaultReadTimeoutMS      = 60000
	defaultInstallTimeoutMS   = 60000
	defaultStopTimeoutMS      = 30000
	defaultListenAddr         = "localhost:8484"
)

// DefaultBlockedHostPatterns lists the CIDR ranges remote bundle downloads
// may never target: loopback, link-local and RFC1918 private space.
var DefaultBlockedHostPatterns = []string{
	"127.0.0.0/8",
	"::1/128",
	"169.254.0.0/16",
	"fe80::/10",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// Config represents the configuration file the runtime can be started with.
type Config struct {
	CacheRoot           string   `json:"cache_root,omitempty"`
	MaxBundleSizeBytes  int64    `json:"max_bundle_size_bytes,omitempty"`
	ConnectTimeoutMS    int64    `json:"connect_timeout_ms,omitempty"`
	ReadTimeoutMS       int64    `json:"read_timeout_ms,omitempty"`
	BlockedHostPatterns []string `json:"blocked_host_patterns,omitempty"`
	DefaultRepositories []string `json:"default_repositories,omitempty"`
	InstallTimeoutMS    int64    `json:"install_timeout_ms,omitempty"`
	StopTimeoutMS       int64    `json:"stop_timeout_ms,omitempty"`
	ListenAddr          string   `json:"listen_addr,omitempty"`
}

// ParseConfig returns a valid Config object with defaults injected.
func ParseConfig(raw []byte) (*Config, error) {
	var result Config
	if err := util.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, result.validateAndInjectDefaults()
}

// ParseConfigFile reads and parses the configuration file at path.
func ParseConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(raw)
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	c := &Config{}
	if err := c.validateAndInjectDefaults(); err != nil {
		panic(err)
	}
	return c
}

// ConnectTimeout returns the dial timeout for remote fetches.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

// ReadTimeout returns the overall response read timeout for remote fetches.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// InstallTimeout returns the bound on a single install or start operation.
func (c *Config) InstallTimeout() time.Duration {
	return time.Duration(c.InstallTimeoutMS) * time.Millisecond
}

// StopTimeout returns the bound on a single stop operation.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutMS) * time.Millisecond
}

// BlockedNets returns the parsed CIDR blocklist.
func (c *Config) BlockedNets() []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(c.BlockedHostPatterns))
	for _, pattern := range c.BlockedHostPatterns {
		_, ipnet, err := net.ParseCIDR(pattern)
		if err != nil {
			continue
		}
		nets = append(nets, ipnet)
	}
	return nets
}

func (c *Config) validateAndInjectDefaults() error {

	if c.CacheRoot == "" {
		c.CacheRoot = filepath.Join(os.TempDir(), "remote-plugins")
	}

	if c.MaxBundleSizeBytes == 0 {
		c.MaxBundleSizeBytes = defaultMaxBundleSizeBytes
	} else if c.MaxBundleSizeBytes < 0 {
		return &Error{Field: "max_bundle_size_bytes", Message: "must be positive"}
	}

	if c.ConnectTimeoutMS == 0 {
		c.ConnectTimeoutMS = defaultConnectTimeoutMS
	} else if c.ConnectTimeoutMS < 0 {
		return &Error{Field: "connect_timeout_ms", Message: "must be positive"}
	}

	if c.ReadTimeoutMS == 0 {
		c.ReadTimeoutMS = defaultReadTimeoutMS
	} else if c.ReadTimeoutMS < 0 {
		return &Error{Field: "read_timeout_ms", Message: "must be positive"}
	}

	if c.InstallTimeoutMS == 0 {
		c.InstallTimeoutMS = defaultInstallTimeoutMS
	} else if c.InstallTimeoutMS < 0 {
		return &Error{Field: "install_timeout_ms", Message: "must be positive"}
	}

	if c.StopTimeoutMS == 0 {
		c.StopTimeoutMS = defaultStopTimeoutMS
	} else if c.StopTimeoutMS < 0 {
		return &Error{Field: "stop_timeout_ms", Message: "must be positive"}
	}

	if c.BlockedHostPatterns == nil {
		c.BlockedHostPatterns = append([]string{}, DefaultBlockedHostPatterns...)
	}
	for _, pattern := range c.BlockedHostPatterns {
		if _, _, err := net.ParseCIDR(pattern); err != nil {
			return &Error{Field: "blocked_host_patterns", Message: "invalid CIDR " + pattern}
		}
	}

	for _, repo := range c.DefaultRepositories {
		u, err := url.Parse(repo)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return &Error{Field: "default_repositories", Message: "repository URL must be https: " + repo}
		}
	}

	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	return nil
}

// Error represents a configuration validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config: " + e.Field + ": " + e.Message
}
