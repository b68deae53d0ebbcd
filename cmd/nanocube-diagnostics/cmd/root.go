// MIT License

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose          bool
	releaseThreshold int

	logger = logrus.New()
	cfg    = viper.New()
)

// rootCmd is the base command; its only real work is defining the flags
// every subcommand shares and wiring --release-threshold through viper so
// the NANOCUBE_RELEASE_THRESHOLD environment variable can override it,
// matching the flag/env
// precedence rudd's functional-options constructor leaves to the caller.
var rootCmd = &cobra.Command{
	Use:   "nanocube-diagnostics",
	Short: "Build a nanocube from command-line points and print its diagnostics",
	Long: `nanocube-diagnostics is a small, in-process driver over the nanocube
package's own diagnostic surface (Stats, PrintDot, FlushReleaseList). It
takes no input files and opens no network connections: every point and
query comes from repeated command-line flags.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute runs the root command, exiting the process with a nonzero
// status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().IntVar(&releaseThreshold, "release-threshold", 256, "pending release-list entries before an implicit flush")

	cfg.SetEnvPrefix("NANOCUBE")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()
	_ = cfg.BindPFlag("release-threshold", rootCmd.PersistentFlags().Lookup("release-threshold"))

	rootCmd.AddCommand(buildCmd)
}
