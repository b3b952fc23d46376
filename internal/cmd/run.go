// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"code.hybscloud.com/proc"
	procprom "code.hybscloud.com/proc/adapters/prometheus"
)

// loadConfig describes one load run.
type loadConfig struct {
	Settings  proc.Settings
	Senders   int
	Messages  int
	WorkDelay time.Duration
	MaxRetry  time.Duration
}

// loadReport summarizes a finished load run.
type loadReport struct {
	Completed int64
	Retried   int64
	Failed    int64
	Elapsed   time.Duration
}

func (r loadReport) throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Completed) / r.Elapsed.Seconds()
}

func newRunCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Send messages from concurrent callers and report the outcome",
		RunE:  runE,
	}
	f := c.Flags()
	def := proc.DefaultSettings()
	f.Int("senders", 8, "concurrent callers")
	f.Int("messages", 1000, "messages per caller")
	f.Int("max-in-flight", def.MaxInFlight, "Driver in-flight limit")
	f.Int("inbox-capacity", def.InboxCapacity, "Driver inbox capacity")
	f.Duration("work-delay", time.Millisecond, "simulated work time per message")
	f.Duration("max-retry", 5*time.Second, "give up retrying a rejected message after this long")
	f.String("metrics-addr", "", "serve Prometheus /metrics on this address")
	return c
}

func runE(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	var cfg loadConfig
	cfg.Senders, _ = f.GetInt("senders")
	cfg.Messages, _ = f.GetInt("messages")
	cfg.Settings.MaxInFlight, _ = f.GetInt("max-in-flight")
	cfg.Settings.InboxCapacity, _ = f.GetInt("inbox-capacity")
	cfg.WorkDelay, _ = f.GetDuration("work-delay")
	cfg.MaxRetry, _ = f.GetDuration("max-retry")
	addr, _ := f.GetString("metrics-addr")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	if addr != "" {
		srv := serveMetrics(addr, reg, log)
		defer srv.Shutdown(context.Background())
	}

	report, err := runLoad(ctx, cfg, log, proc.WithMetrics(procprom.NewMetrics(reg)))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "completed=%d retried=%d failed=%d elapsed=%s throughput=%.0f/s\n",
		report.Completed, report.Retried, report.Failed, report.Elapsed.Round(time.Millisecond), report.throughput())
	if report.Failed > 0 {
		return errors.Errorf("%d messages failed", report.Failed)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Info("prometheus metrics server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("prometheus server error", slog.Any("error", err))
		}
	}()
	return srv
}

// sleeper answers each message with its own value after delay.
func sleeper(delay time.Duration) proc.HandlerFunc[int, int] {
	return func(n int, cx *proc.Context) proc.Work[int] {
		return proc.Go(cx, func() (int, error) {
			time.Sleep(delay)
			return n, nil
		})
	}
}

// runLoad spawns a Driver, runs it until every caller finished, and closes it.
// Callers retry InFlightLimit rejections with exponential backoff.
func runLoad(ctx context.Context, cfg loadConfig, log *slog.Logger, opts ...proc.Option) (loadReport, error) {
	opts = append([]proc.Option{proc.WithName("procload"), proc.WithLogger(log)}, opts...)
	d, ref, err := proc.Spawn[int, int](sleeper(cfg.WorkDelay), cfg.Settings, opts...)
	if err != nil {
		return loadReport{}, err
	}
	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(ctx) }()

	var completed, retried, failed atomix.Int64
	start := time.Now()
	var wg sync.WaitGroup
	for s := range cfg.Senders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range cfg.Messages {
				msg := s*cfg.Messages + i
				if err := ask(ctx, ref, msg, cfg.MaxRetry, &retried); err != nil {
					failed.Add(1)
					log.Warn("message failed", slog.Int("msg", msg), slog.Any("error", err))
					continue
				}
				completed.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	ref.Close()
	if err := <-runDone; err != nil {
		return loadReport{}, errors.Wrap(err, "driver")
	}
	report := loadReport{
		Completed: completed.Load(),
		Retried:   retried.Load(),
		Failed:    failed.Load(),
		Elapsed:   elapsed,
	}
	log.Info("load finished",
		slog.Int64("completed", report.Completed),
		slog.Int64("retried", report.Retried),
		slog.Int64("failed", report.Failed),
		slog.Duration("elapsed", elapsed))
	return report, nil
}

// ask sends msg until it is not rejected for capacity. Other failures are
// permanent.
func ask(ctx context.Context, ref *proc.Ref[int, int], msg int, maxRetry time.Duration, retried *atomix.Int64) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Millisecond
	bo.MaxElapsedTime = maxRetry
	attempt := 0
	return backoff.Retry(func() error {
		if attempt > 0 {
			retried.Add(1)
		}
		attempt++
		v, err := ref.Ask(ctx, msg)
		if he, ok := proc.AsHandleError[int](err); ok && he.Kind == proc.InFlightLimit {
			msg = he.Message
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		if v != msg {
			return backoff.Permanent(errors.Errorf("reply %d for message %d", v, msg))
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}
