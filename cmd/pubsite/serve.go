package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubsite"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the site and serve it locally",
	Long: `Builds the site, then serves the output directory. With --watch the site
is rebuilt whenever content, data or static files change. When
preview.password is set, drafts are available under /_drafts/.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		site, err := loadSite()
		if err != nil {
			return err
		}
		defer site.Close()
		if serveAddr != "" {
			site.Config.Preview.Addr = serveAddr
		}
		pubsite.WithDrafts(site.Config.Preview.Password != "")(site)

		if _, err := site.Build(ctx); err != nil {
			return err
		}

		srv, err := site.NewServer(ctx)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Serve(gctx)
		})
		if serveWatch {
			g.Go(func() error {
				logger.Info("watching for changes", zap.Strings("dirs", []string{
					site.Config.ContentDir, site.Config.DataDir, site.Config.StaticDir,
				}))
				return site.Watch(gctx)
			})
		}
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from preview.addr)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Rebuild on file changes")
}
