// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "cargoshift",
	Short: "Cargoshift - migrates uploads between storage services",
	Long: `Cargoshift streams content-addressed uploads from a legacy storage
service into a capability-based destination storage service, registering
each part and upload with the destination. Nothing is deleted from the
legacy side.`,
	PersistentPreRun: loadConfiguration,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a configuration file (yaml/json/toml); searched in '.', $HOME/.cargoshift, /etc/cargoshift when unset")
}

// loadConfiguration mirrors zapfs's config-file-plus-env precedence:
// an explicit --config flag wins, otherwise viper searches its usual
// candidate paths. CARGOSHIFT_-prefixed env vars are always read and
// override values from the config file.
func loadConfiguration(cmd *cobra.Command, args []string) {
	viper.SetEnvPrefix("cargoshift")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("cargoshift")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.cargoshift")
		viper.AddConfigPath("/etc/cargoshift/")
	}

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return
		}
		log.Warn().Err(err).Msg("failed to load configuration file")
		return
	}
	log.Info().Str("file", viper.ConfigFileUsed()).Msg("loaded configuration file")
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
