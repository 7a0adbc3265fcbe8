// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package download implements the remote bundle loader: HTTPS-only fetches
// with host blocklisting, size caps, checksum verification and an on-disk
// cache keyed by URL hash.
package download

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inkpad-io/inkpad/bundle"
	"github.com/inkpad-io/inkpad/config"
	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/metrics"
	"github.com/inkpad-io/inkpad/types"
	"github.com/inkpad-io/inkpad/util"
)

// downloadRetries is the number of times a transient network failure is
// retried before the download is reported as failed.
const downloadRetries = 2

// Loader fetches remote plugin bundles. The zero value is not usable; use
// New.
type Loader struct {
	cacheRoot string
	maxSize   int64
	blocked   []*net.IPNet
	client    *http.Client
	logger    logging.Logger
	metrics   metrics.Metrics
}

// New returns a Loader configured from c. The cache directory is created
// lazily on first download.
func New(c *config.Config) *Loader {
	l := &Loader{
		cacheRoot: c.CacheRoot,
		maxSize:   c.MaxBundleSizeBytes,
		blocked:   c.BlockedNets(),
		logger:    logging.NewNoOpLogger(),
		metrics:   metrics.NoOp(),
	}

	// The dialer re-checks every resolved address so redirects and DNS
	// rebinding cannot reach a blocked network after URL validation.
	dialer := &net.Dialer{Timeout: c.ConnectTimeout()}
	l.client = &http.Client{
		Timeout: c.ReadTimeout(),
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, _, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
				if err != nil {
					return nil, err
				}
				for _, ip := range ips {
					if l.blockedIP(ip.IP) {
						return nil, types.NewError(types.SecurityErr, "host %v resolves to blocked address %v", host, ip.IP)
					}
				}
				return dialer.DialContext(ctx, network, addr)
			},
		},
	}
	return l
}

// WithTLSConfig sets the TLS client configuration used for fetches, e.g. to
// trust a private CA.
func (l *Loader) WithTLSConfig(tc *tls.Config) *Loader {
	l.client.Transport.(*http.Transport).TLSClientConfig = tc
	return l
}

// WithLogger sets the logger on the loader.
func (l *Loader) WithLogger(logger logging.Logger) *Loader {
	l.logger = logger
	return l
}

// WithMetrics sets the metrics provider on the loader.
func (l *Loader) WithMetrics(m metrics.Metrics) *Loader {
	l.metrics = m
	return l
}

// CacheKey returns the cache key for rawURL: the first 16 hex characters of
// its SHA-256.
func CacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:16]
}

// Download fetches the bundle at rawURL and returns the path of the cached
// archive. When expectedChecksum is non-empty the archive's SHA-256 hex
// must match it, compared case-insensitively. A valid cached copy is
// returned without network I/O.
func (l *Loader) Download(ctx context.Context, rawURL, expectedChecksum string) (string, error) {
	if err := l.validateURL(rawURL); err != nil {
		return "", err
	}

	// Computed sums are lowercase hex; accept either case from callers.
	expectedChecksum = strings.ToLower(expectedChecksum)

	path := filepath.Join(l.cacheRoot, CacheKey(rawURL)+bundle.Suffix)

	if ok, err := l.cacheValid(path, expectedChecksum); err != nil {
		return "", err
	} else if ok {
		l.metrics.Counter(metrics.BundleCacheHit).Incr()
		l.logger.Debug("Bundle cache hit for %v.", rawURL)
		return path, nil
	}

	var err error
	for retry := 0; ; retry++ {
		err = l.fetch(ctx, rawURL, path, expectedChecksum)
		if err == nil || !types.IsNetwork(err) || retry >= downloadRetries {
			break
		}
		delay := util.DefaultBackoff(float64(100*time.Millisecond), float64(5*time.Second), retry)
		l.logger.Warn("Download %v failed (%v), retrying in %v.", rawURL, err, delay)
		select {
		case <-ctx.Done():
			return "", types.WrapError(types.NetworkErr, ctx.Err())
		case <-time.After(delay):
		}
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// Load downloads (or reuses the cached copy of) the bundle at rawURL and
// parses it.
func (l *Loader) Load(ctx context.Context, rawURL, expectedChecksum string) (bundle.Bundle, string, error) {
	path, err := l.Download(ctx, rawURL, expectedChecksum)
	if err != nil {
		return bundle.Bundle{}, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return bundle.Bundle{}, "", types.WrapError(types.InternalErr, err)
	}
	defer f.Close()

	timer := l.metrics.Timer(metrics.BundleLoad)
	timer.Start()
	b, err := bundle.NewReader(f).WithSizeLimitBytes(l.maxSize).Read()
	timer.Stop()
	if err != nil {
		return bundle.Bundle{}, "", err
	}
	return b, path, nil
}

// ClearCache removes every cached bundle archive.
func (l *Loader) ClearCache() error {
	entries, err := os.ReadDir(l.cacheRoot)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), bundle.Suffix) {
			continue
		}
		if err := os.Remove(filepath.Join(l.cacheRoot, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return types.NewError(types.InvalidErr, "bundle URL %v: %v", rawURL, err)
	}
	if u.Scheme != "https" {
		return types.NewError(types.InvalidErr, "bundle URL %v: scheme must be https", rawURL)
	}
	if !strings.HasSuffix(u.Path, bundle.Suffix) {
		return types.NewError(types.InvalidErr, "bundle URL %v: path must end in %v", rawURL, bundle.Suffix)
	}

	host := u.Hostname()
	if ip := net.ParseIP(host); ip != nil && l.blockedIP(ip) {
		return types.NewError(types.SecurityErr, "bundle URL %v targets blocked address %v", rawURL, ip)
	}
	return nil
}

func (l *Loader) blockedIP(ip net.IP) bool {
	for _, ipnet := range l.blocked {
		if ipnet.Contains(ip) {
			return true
		}
	}
	return false
}

// cacheValid reports whether path exists and, when a checksum is expected,
// matches it. A mismatching cached file is removed so the download starts
// clean.
func (l *Loader) cacheValid(path, expectedChecksum string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if expectedChecksum == "" {
		return true, nil
	}
	sum, err := fileSHA256(path)
	if err != nil {
		return false, err
	}
	if sum != expectedChecksum {
		l.logger.Warn("Cached bundle %v fails checksum check, refetching.", path)
		if err := os.Remove(path); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL, path, expectedChecksum string) error {
	timer := l.metrics.Timer(metrics.BundleDownload)
	timer.Start()
	defer timer.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.WrapError(types.InvalidErr, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if types.IsSecurity(err) {
			return types.NewError(types.SecurityErr, "download %v: %v", rawURL, err)
		}
		return types.NewError(types.NetworkErr, "download %v: %v", rawURL, err)
	}
	defer util.Close(resp)

	if resp.StatusCode != http.StatusOK {
		return types.NewError(types.NetworkErr, "download %v: unexpected status %v", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > l.maxSize {
		return types.NewError(types.IntegrityErr, "download %v: content length %d exceeds limit %d", rawURL, resp.ContentLength, l.maxSize)
	}

	if err := os.MkdirAll(l.cacheRoot, 0755); err != nil {
		return types.WrapError(types.InternalErr, err)
	}

	tmp, err := os.CreateTemp(l.cacheRoot, "download-*.partial")
	if err != nil {
		return types.WrapError(types.InternalErr, err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hash), io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		return types.NewError(types.NetworkErr, "download %v: %v", rawURL, err)
	}
	if n > l.maxSize {
		return types.NewError(types.IntegrityErr, "download %v: exceeds limit %d bytes", rawURL, l.maxSize)
	}

	sum := hex.EncodeToString(hash.Sum(nil))
	if expectedChecksum != "" && sum != expectedChecksum {
		return types.NewError(types.IntegrityErr, "download %v: checksum %v does not match expected %v", rawURL, sum, expectedChecksum)
	}

	if err := tmp.Close(); err != nil {
		return types.WrapError(types.InternalErr, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return types.WrapError(types.InternalErr, err)
	}

	l.logger.Info("Downloaded bundle %v (%d bytes, sha256 %v).", rawURL, n, sum)
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Sum256Hex returns the SHA-256 of bs as a 64-character hex string.
func Sum256Hex(bs []byte) string {
	sum := sha256.Sum256(bs)
	return hex.EncodeToString(sum[:])
}
