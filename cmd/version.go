// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/northlight-systems/cargoshift/pkg/migrate"
)

// Build-time variables (set via -ldflags)
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// GitCommit is the git commit hash
	GitCommit = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Cargoshift {{.Version}}\n")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and migration pipeline information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Cargoshift %s\n", Version)
		fmt.Printf("  Git commit:        %s\n", GitCommit)
		fmt.Printf("  Built:             %s\n", BuildDate)
		fmt.Printf("  Go version:        %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:           %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  register statuses: %s, %s\n", migrate.StatusUpload, migrate.StatusDone)
	},
}
