package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gabvrl/revisor/internal/dashboard"
)

func newServeCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web dashboard",
		Long: `Serves the HTML overview and the JSON API on the configured host and port
(REVISOR_HOST and REVISOR_PORT override the config). With --watch, changes
to the course or directive directories flag the analysis as stale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			settings := dashboard.NewSettings(e.cfg.Dashboard.Host, e.cfg.Dashboard.Port)
			srv := dashboard.NewServer(settings, dashboard.Paths{
				PlanJSON:   e.cfg.PlanJSONPath(),
				ConceptMap: e.cfg.ConceptMapPath(),
				Progress:   e.cfg.ProgressPath(),
			}, dashboard.WithLogger(e.log))

			if err := srv.Start(ctx); err != nil {
				return err
			}
			fmt.Printf("Dashboard on http://%s (Ctrl-C to stop)\n", srv.Addr())

			if watch {
				go func() {
					if err := srv.Watch(ctx, e.cfg.CoursesDir(), e.cfg.DirectivesDir()); err != nil && ctx.Err() == nil {
						e.log.Warnf("serve: watcher stopped: %v", err)
					}
				}()
			}

			<-ctx.Done()
			stop()
			return srv.Shutdown(context.Background())
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "watch document directories and flag stale analysis")
	return cmd
}
