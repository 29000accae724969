package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/bot"
	"github.com/Veraticus/meetlog/internal/config"
	"github.com/Veraticus/meetlog/internal/engine"
	"github.com/Veraticus/meetlog/internal/scheduler"
	"github.com/Veraticus/meetlog/internal/service"
)

func botCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Start long-polling Telegram and answer meeting reports and commands.

When backup.schedule is set, a JSON snapshot of every record is written to
backup.path on that cron schedule while the bot runs.`,
		RunE: runBot,
	}

	cmd.Flags().String("token", "", "Telegram bot token (overrides telegram.token)")
	_ = viper.BindPFlag("telegram.token", cmd.Flags().Lookup("token"))

	return cmd
}

func runBot(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	botCfg, err := config.LoadBotConfig(v)
	if err != nil {
		return err
	}

	return withEngine(cmd, func(ctx context.Context, store service.RecordStore, eng *engine.Engine) error {
		logger := slog.Default()

		sched, err := startBackups(v, store, logger)
		if err != nil {
			return err
		}
		if sched != nil {
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := sched.Stop(stopCtx); err != nil {
					logger.Warn("scheduler did not stop cleanly", "error", err)
				}
			}()
		}

		api, err := bot.NewAPI(botCfg.Token)
		if err != nil {
			return err
		}

		handler := bot.NewHandler(eng, bot.NewTelegramSender(api), bot.NewSessions(botCfg.ModifyTTL), logger)
		b := bot.New(api, handler, bot.Config{PollTimeout: botCfg.PollTimeout}, logger)
		return b.Run(ctx)
	})
}

// startBackups schedules the periodic JSON export. It returns nil when
// backups are disabled or the store already is the JSON file.
func startBackups(v *viper.Viper, store service.RecordStore, logger *slog.Logger) (*scheduler.Scheduler, error) {
	storageCfg, err := config.LoadStorageConfig(v)
	if err != nil {
		return nil, err
	}
	if storageCfg.BackupSchedule == "" || storageCfg.Driver == config.DriverJSON {
		return nil, nil
	}

	report, err := config.LoadReportConfig(v)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(report.Location, logger)
	job := scheduler.BackupJob(store, storageCfg.BackupPath, logger)
	if err := sched.Schedule(scheduler.BackupJobName, storageCfg.BackupSchedule, job); err != nil {
		return nil, err
	}
	sched.Start()

	if next, ok := sched.Next(scheduler.BackupJobName); ok {
		logger.Info("backups scheduled", "path", storageCfg.BackupPath, "next", next)
	}
	return sched, nil
}
