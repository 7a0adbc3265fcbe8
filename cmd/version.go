// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkpad-io/inkpad/version"
)

func init() {
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Print the version of the plugin runtime",
		Run: func(cmd *cobra.Command, args []string) {
			generateCmdOutput(os.Stdout)
		},
	}
	RootCommand.AddCommand(versionCommand)
}

func generateCmdOutput(out io.Writer) {
	fmt.Fprintln(out, "Version: "+version.Version)
	fmt.Fprintln(out, "Plugin API: "+version.APIMajor)
	fmt.Fprintln(out, "Build Commit: "+version.Vcs)
	fmt.Fprintln(out, "Go Version: "+version.GoVersion)
	fmt.Fprintln(out, "Platform: "+version.Platform)
}
