package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if coder, ok := err.(cli.ExitCoder); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "reservas",
		Usage: "manage restaurant reservations of a pensioner account",
		// exit codes are handled in main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config",
				EnvVars: []string{"CONFIG_PATH"},
				Value:   "configs/config.yaml",
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "id of the configured user to act as",
				EnvVars: []string{"PENSIONADO_USER"},
				Value:   "1",
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			createCommand(),
			editCommand(),
			cancelCommand(),
			calendarCommand(),
			notificationsCommand(),
			backupCommand(),
		},
	}
}
