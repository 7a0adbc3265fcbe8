// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/inkpad-io/inkpad/version"
)

func TestGenerateCmdOutput(t *testing.T) {
	var buf bytes.Buffer
	generateCmdOutput(&buf)

	out := buf.String()
	for _, want := range []string{
		"Version: " + version.Version,
		"Plugin API: " + version.APIMajor,
		"Go Version: " + version.GoVersion,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
