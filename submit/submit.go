// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package submit implements validation of plugin submissions before they
// are accepted into a repository: metadata checks, bundle structure checks,
// a static security screen and an API compatibility check.
package submit

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inkpad-io/inkpad/bundle"
	"github.com/inkpad-io/inkpad/download"
	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/metrics"
	"github.com/inkpad-io/inkpad/version"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 1000
)

var (
	versionRe = regexp.MustCompile(`^\d+\.\d+\.\d+(-[A-Za-z0-9]+)?$`)
	emailRe   = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

	// executableSuffixes are never allowed inside a bundle.
	executableSuffixes = []string{".exe", ".bat", ".sh", ".dll"}

	// denylist holds literal references that fail the security screen:
	// process execution, raw system calls, unsafe memory access and
	// dynamic code loading.
	denylist = []string{
		"os/exec",
		"syscall",
		"unsafe",
		"plugin.Open",
	}

	// screenRes complements the denylist with patterns for process
	// control, dynamic dispatch and embedded scripting.
	screenRes = []*regexp.Regexp{
		regexp.MustCompile(`exec\.Command`),
		regexp.MustCompile(`os\.(Exit|StartProcess)`),
		regexp.MustCompile(`reflect\.(MakeFunc|NewAt)`),
		regexp.MustCompile(`dlopen|LoadLibrary`),
		regexp.MustCompile(`(?i)\beval\s*\(`),
	}
)

// Submission is a candidate plugin offered for publication.
type Submission struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	AuthorEmail string `json:"author_email"`
	Homepage    string `json:"homepage,omitempty"`
	BundlePath  string `json:"bundle_path"`
}

// ValidationResult is the outcome of validating a submission. A submission
// is accepted iff Errors is empty; Warnings are advisory.
type ValidationResult struct {
	Errors           []string `json:"errors,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	SecurityOK       bool     `json:"security_ok"`
	CompatibilityOK  bool     `json:"compatibility_ok"`
	ComputedChecksum string   `json:"computed_checksum,omitempty"`
	ComputedSize     int64    `json:"computed_size"`
}

// Accepted reports whether the submission passed every check that blocks
// publication.
func (r *ValidationResult) Accepted() bool {
	return len(r.Errors) == 0
}

// Validator screens plugin submissions.
type Validator struct {
	maxSize int64
	logger  logging.Logger
	metrics metrics.Metrics
}

// NewValidator returns a Validator enforcing the given bundle size limit.
func NewValidator(maxSize int64) *Validator {
	return &Validator{
		maxSize: maxSize,
		logger:  logging.NewNoOpLogger(),
		metrics: metrics.NoOp(),
	}
}

// WithLogger sets the logger on the validator.
func (v *Validator) WithLogger(logger logging.Logger) *Validator {
	v.logger = logger
	return v
}

// WithMetrics sets the metrics provider on the validator.
func (v *Validator) WithMetrics(m metrics.Metrics) *Validator {
	v.metrics = m
	return v
}

// Validate runs every check against sub and returns the aggregated result.
// Validate never fails; problems surface as result errors or warnings.
func (v *Validator) Validate(sub Submission) ValidationResult {
	v.metrics.Counter(metrics.SubmissionScreen).Incr()

	result := ValidationResult{SecurityOK: true, CompatibilityOK: true}

	v.checkMetadata(sub, &result)
	v.checkBundle(sub, &result)

	if len(result.Errors) > 0 {
		v.logger.Info("Submission %v rejected with %d errors.", sub.Name, len(result.Errors))
	}
	return result
}

func (v *Validator) checkMetadata(sub Submission, result *ValidationResult) {
	if sub.Name == "" || len(sub.Name) > maxNameLen {
		result.Errors = append(result.Errors, fmt.Sprintf("name must be 1..%d characters", maxNameLen))
	}
	if !versionRe.MatchString(sub.Version) {
		result.Errors = append(result.Errors, fmt.Sprintf("version %q is not a valid semantic version", sub.Version))
	}
	if sub.Description == "" || len(sub.Description) > maxDescriptionLen {
		result.Errors = append(result.Errors, fmt.Sprintf("description must be 1..%d characters", maxDescriptionLen))
	}
	if !emailRe.MatchString(sub.AuthorEmail) {
		result.Errors = append(result.Errors, fmt.Sprintf("author email %q is malformed", sub.AuthorEmail))
	}
	if sub.Homepage != "" && !strings.HasPrefix(sub.Homepage, "http://") && !strings.HasPrefix(sub.Homepage, "https://") {
		result.Warnings = append(result.Warnings, fmt.Sprintf("homepage %q is not an http(s) URL", sub.Homepage))
	}
}

func (v *Validator) checkBundle(sub Submission, result *ValidationResult) {
	fi, err := os.Stat(sub.BundlePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("bundle %v does not exist", sub.BundlePath))
		return
	}
	result.ComputedSize = fi.Size()
	if fi.Size() > v.maxSize {
		result.Errors = append(result.Errors, fmt.Sprintf("bundle size %d exceeds limit %d", fi.Size(), v.maxSize))
		return
	}

	raw, err := os.ReadFile(sub.BundlePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("bundle %v unreadable: %v", sub.BundlePath, err))
		return
	}
	result.ComputedChecksum = download.Sum256Hex(raw)

	b, err := bundle.OpenPath(sub.BundlePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("bundle parse: %v", err))
		return
	}

	if b.Manifest.Name == "" {
		result.Errors = append(result.Errors, "manifest missing name")
	}
	if b.Manifest.Version == "" {
		result.Errors = append(result.Errors, "manifest missing version")
	}
	if b.Manifest.APIVersion == "" {
		result.Errors = append(result.Errors, "manifest missing api_version")
	}

	entrypoint, err := b.Entrypoint()
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else if !hasEntryArtifact(&b, entrypoint) {
		result.Errors = append(result.Errors, fmt.Sprintf("entrypoint %v has no matching artifact in the bundle", entrypoint))
	}

	for _, artifact := range b.Artifacts {
		ext := strings.ToLower(filepath.Ext(artifact.Path))
		for _, suffix := range executableSuffixes {
			if ext == suffix {
				result.Errors = append(result.Errors, fmt.Sprintf("bundle entry %v has a forbidden executable suffix", artifact.Path))
			}
		}
	}

	v.screen(&b, result)

	if b.Manifest.APIVersion != "" && apiMajor(b.Manifest.APIVersion) != version.APIMajor {
		result.CompatibilityOK = false
		result.Errors = append(result.Errors, fmt.Sprintf("api_version %v is outside the supported %v.x series", b.Manifest.APIVersion, version.APIMajor))
	}
}

// screen scans every artifact for denylisted references.
func (v *Validator) screen(b *bundle.Bundle, result *ValidationResult) {
	for _, artifact := range b.Artifacts {
		content := string(artifact.Raw)
		for _, needle := range denylist {
			if strings.Contains(content, needle) {
				result.SecurityOK = false
				result.Errors = append(result.Errors, fmt.Sprintf("artifact %v references forbidden symbol %q", artifact.Path, needle))
			}
		}
		for _, re := range screenRes {
			if re.MatchString(content) {
				result.SecurityOK = false
				result.Errors = append(result.Errors, fmt.Sprintf("artifact %v matches forbidden pattern %v", artifact.Path, re))
			}
		}
	}
}

func hasEntryArtifact(b *bundle.Bundle, entrypoint string) bool {
	for _, artifact := range b.Artifacts {
		base := filepath.Base(artifact.Path)
		if name := strings.TrimSuffix(base, filepath.Ext(base)); name == entrypoint {
			return true
		}
	}
	return false
}

func apiMajor(apiVersion string) string {
	if i := strings.Index(apiVersion, "."); i >= 0 {
		return apiVersion[:i]
	}
	return apiVersion
}
