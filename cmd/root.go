/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mpapenbr/racedb/log"
	addCmd "github.com/mpapenbr/racedb/pkg/cmd/add"
	copyCmd "github.com/mpapenbr/racedb/pkg/cmd/copy"
	deleteCmd "github.com/mpapenbr/racedb/pkg/cmd/delete"
	editCmd "github.com/mpapenbr/racedb/pkg/cmd/edit"
	listCmd "github.com/mpapenbr/racedb/pkg/cmd/list"
	queryCmd "github.com/mpapenbr/racedb/pkg/cmd/query"
	"github.com/mpapenbr/racedb/pkg/cmd/util"
	viewCmd "github.com/mpapenbr/racedb/pkg/cmd/view"
	watchCmd "github.com/mpapenbr/racedb/pkg/cmd/watch"
	"github.com/mpapenbr/racedb/pkg/config"
	"github.com/mpapenbr/racedb/version"
)

const envPrefix = "RACEDB"

var cfgFile string

// NewRootCmd builds the command tree. Execute uses it, tests may create
// their own instances.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "racedb",
		Short:        "This is a user interface to interact with a race journal and output json.",
		Long:         ``,
		Version:      version.FullVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgUsed := initConfig(cmd)
			if err := util.InitLogger(cmd.ErrOrStderr()); err != nil {
				return err
			}
			if cfgUsed != "" {
				log.Info("Using config file", log.String("file", cfgUsed))
			}
			log.Debug("config resolved",
				log.String("filename", config.Filename),
				log.String("log-level", config.LogLevel),
				log.String("log-format", config.LogFormat))
			cmd.SetContext(log.AddToContext(cmd.Context(), log.Default()))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.racedb.yml)")
	rootCmd.PersistentFlags().StringVar(&config.Filename, "filename", "",
		"Which data file to use (default is $HOME/.race_db.json)")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "warn",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter, "log-filter", "",
		"zapfilter rules to select log entries, e.g. 'debug:store'")

	// add commands here
	rootCmd.AddCommand(addCmd.NewAddCmd())
	rootCmd.AddCommand(listCmd.NewListCmd())
	rootCmd.AddCommand(viewCmd.NewViewCmd())
	rootCmd.AddCommand(editCmd.NewEditCmd())
	rootCmd.AddCommand(copyCmd.NewCopyCmd())
	rootCmd.AddCommand(deleteCmd.NewDeleteCmd())
	rootCmd.AddCommand(queryCmd.NewQueryCmd())
	rootCmd.AddCommand(watchCmd.NewWatchCmd())
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
// It returns the name of the config file used, if any.
func initConfig(cmd *cobra.Command) string {
	v := viper.New()
	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".racedb" (without extension).
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".racedb")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	cfgUsed := ""
	if err := v.ReadInConfig(); err == nil {
		cfgUsed = v.ConfigFileUsed()
	}

	bindFlags(cmd, v)
	return cfgUsed
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --log-level to RACEDB_LOG_LEVEL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
