// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"testing"

	"github.com/inkpad-io/inkpad/logging"
)

func TestSetupLogging(t *testing.T) {
	logger, err := setupLogging(runParams{logLevel: "debug", logFormat: "text"})
	if err != nil {
		t.Fatal(err)
	}
	if logger.GetLevel() != logging.Debug {
		t.Fatalf("expected debug level, got %v", logger.GetLevel())
	}

	if _, err := setupLogging(runParams{logLevel: "verbose"}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	if _, err := setupLogging(runParams{logFormat: "xml"}); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestSetupStore(t *testing.T) {
	store, err := setupStore("")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	disk, err := setupStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer disk.Close()
}
