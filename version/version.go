// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package version contains version information that is set at build time.
package version

import "runtime"

// Version is the canonical version of the Inkpad plugin runtime.
var Version = "0.4.0-dev"

// APIMajor is the plugin API series accepted by this runtime. Bundles
// declaring an api_version outside this major series fail the
// compatibility screen.
const APIMajor = "1"

// Vcs is set to the current Git commit hash at build time.
var Vcs = ""

// GoVersion is the version of Go this was built with.
var GoVersion = runtime.Version()

// Platform is the runtime OS and architecture.
var Platform = runtime.GOOS + "/" + runtime.GOARCH
