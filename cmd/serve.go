package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/hntop/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the story board over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		listen := a.cfg.GetListen()
		if flagListen != "" {
			listen = flagListen
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		srv := server.New(server.Config{
			Listen:       listen,
			Version:      version,
			Debug:        flagDebug,
			Key:          a.key,
			Placeholders: a.cfg.GetPlaceholders(),
		}, a.client, a.fetcher)

		if err := srv.Run(ctx); err != nil {
			return err
		}
		lgr.Printf("[INFO] shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (default from config, :8080)")
}
