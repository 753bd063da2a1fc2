package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/junyeong-ai/modmap/internal/telemetry"
	"github.com/junyeong-ai/modmap/internal/watcher"
	"github.com/junyeong-ai/modmap/schema"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>...",
	Short: "Re-validate documents whenever they change",
	Long: `Validates each file once, then watches them and prints a fresh verdict
after every change. Bursts of writes are coalesced using the watch.debounce
setting. Stop with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	addKindFlag(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(cmd)
	if err != nil {
		return err
	}
	for _, path := range args {
		if path == "-" {
			return fmt.Errorf("watch: cannot watch stdin")
		}
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	for _, path := range args {
		e.printer.Verdict(e.validator.File(path, kind))
	}

	w, err := watcher.New(args, e.cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.printer.Info(fmt.Sprintf("watching %d file(s)", len(args)))
	return watchLoop(ctx, e, w.Changes, kind)
}

// watchLoop re-validates on every change until ctx is done or changes closes.
func watchLoop(ctx context.Context, e *env, changes <-chan watcher.Change, kind schema.DocumentKind) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			e.printer.WatchChange(c)
			if err := e.events.Emit(telemetry.Event{
				Timestamp: time.Now().UTC(),
				Kind:      telemetry.KindWatchChange,
				Source:    c.File,
				Data:      map[string]any{"change": c.Kind.String()},
			}); err != nil {
				e.log.Warn().Err(err).Msg("emitting watch event")
			}
			if c.Kind == watcher.ChangeRemoved {
				continue
			}
			e.printer.Verdict(e.validator.File(c.File, kind))
		}
	}
}
