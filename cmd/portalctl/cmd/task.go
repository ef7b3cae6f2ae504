package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/jrsteele09/admissions-portal/internal/utils"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/tasks"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var interval time.Duration

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Grade extraction tasks",
}

var watchCmd = &cobra.Command{
	Use:   "watch <task-id>",
	Short: "Poll a grade extraction task until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		client, err := newClient(store)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		outcome, err := watchTask(ctx, client, args[0], interval)
		if err != nil {
			return err
		}
		if outcome.State == portalapi.TaskCompleted {
			pterm.Success.Printf("Средний балл: %s\n", utils.FormatGrade(outcome.Grade))
			return nil
		}
		return errors.New(outcome.Message)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (defaults to TASK_POLL_INTERVAL)")
	taskCmd.AddCommand(watchCmd)
}

// watchTask polls taskID and returns its terminal outcome, or the context
// error when interrupted.
func watchTask(ctx context.Context, fetcher tasks.StatusFetcher, taskID string, every time.Duration) (tasks.Outcome, error) {
	if every <= 0 {
		every = cfg.GetTaskPollInterval()
	}
	done := make(chan tasks.Outcome, 1)
	poller := tasks.NewPoller(fetcher,
		tasks.WithInterval(every),
		tasks.WithOnComplete(func(o tasks.Outcome) { done <- o }),
	)

	spinner, _ := pterm.DefaultSpinner.Start("Извлечение среднего балла...")
	poller.Start(ctx, taskID)
	defer poller.Stop()

	select {
	case o := <-done:
		if o.State == portalapi.TaskCompleted {
			spinner.Success("Готово")
		} else {
			spinner.Fail(o.Message)
		}
		return o, nil
	case <-ctx.Done():
		spinner.Warning("Прервано")
		return tasks.Outcome{}, ctx.Err()
	}
}
