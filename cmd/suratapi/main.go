package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"suratapi/internal/config"
	"suratapi/internal/logging"
)

// @title           Surat API
// @version         1.0
// @description     Correspondence numbering, approval chains and disposition routing.
// @BasePath        /
// @securityDefinitions.apikey  ActorEmail
// @in                          header
// @name                        X-User-Email
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// exitError carries a process exit code out of a RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d: %v", e.code, e.err) }

func (e *exitError) Unwrap() error { return e.err }

// app is what every subcommand shares: configuration, timezone and logger.
type app struct {
	cfg *config.AppConfig
	loc *time.Location
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "suratapi",
		Short:         "Official correspondence numbering and routing service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg = config.Load()
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			a.loc = loc
			a.log = logging.New(logging.Config{
				Level:    a.cfg.Log.Level,
				Format:   a.cfg.Log.Format,
				Location: loc,
			}, cmd.ErrOrStderr())
			return nil
		},
	}

	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newSeedCommand(a),
		newNumberCommand(a),
	)
	return root
}
