// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/northlight-systems/cargoshift/pkg/httpclient"
	"github.com/northlight-systems/cargoshift/pkg/logger"
	"github.com/northlight-systems/cargoshift/pkg/metrics"
	"github.com/northlight-systems/cargoshift/pkg/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate uploads read from standard input to a destination storage service",
	Long: `migrate reads newline-delimited JSON upload descriptors from standard
input, registers and copies each upload's parts against a capability-based
destination service, binds the parts to the upload, and writes one
newline-delimited outcome per upload. Without --log every outcome goes to
standard error; with --log every outcome goes to the log file and failures
also go to standard error.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	flags := migrateCmd.Flags()
	flags.String("namespace", "", "Destination namespace that register-part/register-upload invocations are scoped to (required)")
	flags.String("fetcher-url", "", "Base URL of the legacy part-fetcher service (required)")
	flags.String("destination-url", "", "Base URL of the destination capability-invocation service (required)")
	flags.String("auth-file", "", "Path to a file containing the opaque authorization (delegation proof) bytes")
	flags.String("log", "", "Path to write newline-delimited outcomes; defaults to standard error")
	flags.String("expected-register-status", "", "When set, reject register-part receipts whose ok.status doesn't match this value")
	flags.Int("concurrency", 8, "Maximum number of parts fetched/registered/copied concurrently")
	flags.String("metrics-addr", "", "Address to serve /metrics and /healthz on, e.g. :9090 (disabled when empty)")

	viper.BindPFlag("namespace", flags.Lookup("namespace"))
	viper.BindPFlag("fetcher_url", flags.Lookup("fetcher-url"))
	viper.BindPFlag("destination_url", flags.Lookup("destination-url"))
	viper.BindPFlag("auth_file", flags.Lookup("auth-file"))
	viper.BindPFlag("log", flags.Lookup("log"))
	viper.BindPFlag("expected_register_status", flags.Lookup("expected-register-status"))
	viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	viper.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
}

func runMigrate(cmd *cobra.Command, args []string) error {
	fl := NewFlagLoader(cmd)

	namespace := fl.String("namespace")
	fetcherURL := fl.String("fetcher-url")
	destinationURL := fl.String("destination-url")
	if namespace == "" || fetcherURL == "" || destinationURL == "" {
		return fmt.Errorf("--namespace, --fetcher-url, and --destination-url are required")
	}

	var auth migrate.Authorization
	if path := fl.String("auth-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read auth-file: %w", err)
		}
		auth = migrate.Authorization(data)
	}

	logPath := fl.String("log")
	var logFile *os.File
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		defer logFile.Close()
	}
	suppressSuccessOnStderr := logPath != ""

	if addr := fl.String("metrics-addr"); addr != "" {
		go func() {
			if err := http.ListenAndServe(addr, metrics.Mux()); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	pool := httpclient.NewPool(0, 0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := migrate.Config{
		Source:                 migrate.NewNDJSONSource(os.Stdin, -1),
		PartFetcher:            migrate.NewHTTPPartFetcher(fetcherURL, pool),
		DestinationClient:      migrate.NewHTTPDestinationClient(destinationURL, pool),
		Authorization:          auth,
		Namespace:              namespace,
		Concurrency:            fl.Int("concurrency"),
		ExpectedRegisterStatus: fl.String("expected-register-status"),
	}

	outcomes, done := migrate.Run(ctx, cfg)

	exitCode := 0
	for o := range outcomes {
		line, err := o.MarshalJSON()
		if err != nil {
			logger.Error().Err(err).Msg("failed to marshal outcome")
			continue
		}
		line = append(line, '\n')

		if o.Failure != nil {
			exitCode = 1
			os.Stderr.Write(line)
			if logFile != nil {
				logFile.Write(line)
			}
			continue
		}

		if !suppressSuccessOnStderr {
			os.Stderr.Write(line)
		}
		if logFile != nil {
			logFile.Write(line)
		}
	}

	if err := <-done; err != nil {
		return fmt.Errorf("migration run failed: %w", err)
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
