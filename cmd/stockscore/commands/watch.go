package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stockscore/backend/internal/scheduler"
	"github.com/wonny/stockscore/backend/internal/scheduler/jobs"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "관심종목 저평가 감시",
		Long: `analysis YAML 의 watch.symbols 를 WATCH_SCHEDULE 마다 재분석하고
적정가 아래로 내려가면 알림을 남깁니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.

Example:
  go run ./cmd/stockscore watch
  go run ./cmd/stockscore watch --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}

			job := jobs.NewWatchJob(jobs.WatchSources{
				Metrics:   a.metrics,
				Quotes:    a.quotes,
				Benchmark: a.benchmark,
			}, a.engine, a.analysis, a.cfg.Watch.Schedule, a.cfg.Watch.Concurrency, nil, a.log)

			// --once 는 재시도 없이 한 번만 실행
			var opts []scheduler.Option
			if once {
				opts = append(opts, scheduler.WithRetry(0, 0))
			}
			sched := scheduler.New(a.log, opts...)
			if err := sched.AddJob(job); err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if once {
				result, err := sched.RunJob(cmd.Context(), job.Name())
				printSnapshots(w, job.Snapshots())
				if summary, ok := job.LastRun(); ok {
					fmt.Fprintf(w, "\nrun %s: %d analyzed, %d skipped, %d failed, %d alerts\n",
						shortHash(result.RunID), summary.Analyzed, summary.Skipped, summary.Failed, summary.Alerts)
				}
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched.Start()
			fmt.Fprintf(w, "✅ Watching %d symbols (%s)\n", len(a.analysis.Watch.Symbols), job.Schedule())
			if next, ok := sched.NextRun(job.Name()); ok {
				fmt.Fprintf(w, "   Next run: %s\n", next.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintln(w, "Press Ctrl+C to stop")

			<-ctx.Done()
			fmt.Fprintln(w, "\nShutting down scheduler...")
			sched.Stop()

			printSnapshots(w, job.Snapshots())
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run the watchlist once and exit")
	return cmd
}
