package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/logger"
)

func newScheduleCommand() *cobra.Command {
	var spec string
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Rebuild all layers on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			if spec == "" {
				spec = proj.cfg.Schedule.Cron
			}

			ctx, stop := signal.NotifyContext(proj.context(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log := logger.FromContext(ctx)

			st, err := proj.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := proj.pipeline(st)
			if err != nil {
				return err
			}

			runOnce := func() {
				report, err := p.RunAll(ctx)
				if err != nil {
					log.Error().Err(err).Msg("scheduled run failed")
					return
				}
				log.Info().Str("run_id", report.RunID).Dur("duration", report.Duration).Msg("scheduled run completed")
			}

			loc, err := proj.cfg.Location()
			if err != nil {
				return err
			}
			c := cron.New(cron.WithLocation(loc))
			if _, err := c.AddFunc(spec, runOnce); err != nil {
				return fmt.Errorf("invalid schedule %q: %w", spec, err)
			}

			if runNow {
				runOnce()
			}

			c.Start()
			log.Info().Str("cron", spec).Str("timezone", proj.cfg.Schedule.Timezone).Msg("scheduler started")
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled pipeline runs at %q (%s). Press Ctrl+C to stop.\n", spec, proj.cfg.Schedule.Timezone)

			<-ctx.Done()
			log.Info().Msg("stopping scheduler")
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron spec (default schedule.cron from config)")
	cmd.Flags().BoolVar(&runNow, "now", false, "run once immediately before waiting for the schedule")

	return cmd
}
