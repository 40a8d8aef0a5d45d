package cmd

import (
	"github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/hntop/internal/config"
	"github.com/matheuskafuri/hntop/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	// the terminal belongs to the TUI, so logs go to a file
	if f, err := openLogFile(config.LogPath()); err == nil {
		defer f.Close()
		setupLog(flagDebug, f, false)
	} else {
		lgr.Printf("[WARN] %v", err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lgr.Printf("[INFO] starting hntop %s, source %s", version, a.cfg.Source)
	return tui.Run(tui.RunOpts{
		Client:       a.client,
		Fetcher:      a.fetcher,
		Key:          a.key,
		Placeholders: a.cfg.GetPlaceholders(),
	})
}
