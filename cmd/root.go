package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/hntop/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagRefresh bool
	flagDebug   bool

	flagCheckUpdate bool
)

var rootCmd = &cobra.Command{
	Use:   "hntop",
	Short: "Searchable Hacker News front page in the terminal",
	Long:  "hntop fetches the top 100 Hacker News front-page stories and lets you filter them by title as you type.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLog(flagDebug, os.Stderr, true)
	},
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "ignore the stored snapshot and fetch fresh stories")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "dbg", false, "debug mode")

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hntop %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdate {
			return
		}
		if res := update.Check(cmd.Context(), update.ReleasesURL, version); res != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "hntop %s is available\n", res.LatestVersion)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "up to date")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
