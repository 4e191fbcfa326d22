// Package cli implements the jws command line client.
//
// the CLI works on local files only - it signs and verifies without the HTTP
// service or the database, which makes it useful for testing interoperability
// with other JWS implementations
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/jws-demo/internal/logger"
	"github.com/information-sharing-networks/jws-demo/internal/version"
)

var appLogger *slog.Logger

var rootCmd = &cobra.Command{
	Use:               "jws",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "JWS signing demo CLI",
	Long:              `CLI for generating signing keys and creating/verifying JWS compact serializations`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logger.ParseLogLevel(os.Getenv("LOG_LEVEL"))
		appLogger = logger.InitLogger(level, "dev")
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
