package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pensionado/internal/backup"
	"pensionado/internal/calendar"
	"pensionado/internal/models"
	"pensionado/internal/service"
	"pensionado/internal/validator"

	"github.com/urfave/cli/v2"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "show upcoming reservations",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "include cancelled reservations"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			list := rt.manager.Upcoming()
			if c.Bool("all") {
				list = rt.manager.Reservations()
			}

			counts := rt.manager.Counts()
			fmt.Fprintf(rt.out, "Confirmadas: %d  Pendientes: %d  Canceladas: %d\n",
				counts.Confirmed, counts.Pending, counts.Cancelled)

			if len(list) == 0 {
				fmt.Fprintln(rt.out, "No tienes reservas.")
				return nil
			}
			for _, r := range list {
				printReservation(rt.out, r)
			}
			return nil
		}),
	}
}

func draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "day, YYYY-MM-DD"},
		&cli.StringFlag{Name: "time", Aliases: []string{"t"}, Usage: "slot, e.g. 12:30"},
		&cli.IntFlag{Name: "party", Aliases: []string{"p"}, Usage: "number of guests (1-8)", Value: models.DefaultPartySize},
		&cli.StringFlag{Name: "comments", Usage: "note for the restaurant"},
	}
}

// applyDraftFlags copies the flags that were given into the manager's form.
// The date goes through the calendar picker so past days are refused early.
func applyDraftFlags(c *cli.Context, rt *runtime) error {
	if c.IsSet("date") {
		picker := calendar.NewPicker(nil, rt.manager.SelectDate)
		picker.Open()
		if _, err := picker.Select(c.String("date")); err != nil {
			if errors.Is(err, calendar.ErrDateNotSelectable) {
				return cli.Exit(validator.MsgPastDate, 2)
			}
			return cli.Exit(validator.MsgDateFormat, 2)
		}
	}

	rt.manager.UpdateDraft(func(d *models.Draft) {
		if c.IsSet("time") {
			d.Time = c.String("time")
		}
		if c.IsSet("party") {
			d.PartySize = c.Int("party")
		}
		if c.IsSet("comments") {
			d.Comments = c.String("comments")
		}
	})
	return nil
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "book a table",
		Flags: draftFlags(),
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			rt.manager.ResetDraft()
			if err := applyDraftFlags(c, rt); err != nil {
				return err
			}

			res, err := rt.manager.Create(c.Context, rt.manager.Draft())
			if err != nil {
				return submitError(rt.out, err)
			}

			fmt.Fprintln(rt.out, "¡Reserva creada! Está pendiente de confirmación.")
			printReservation(rt.out, *res)
			return nil
		}),
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "change date, time, guests or comments of a reservation",
		ArgsUsage: "ID",
		Flags:     draftFlags(),
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("reservation ID is required", 2)
			}
			if _, err := rt.manager.BeginEdit(id); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if err := applyDraftFlags(c, rt); err != nil {
				return err
			}

			res, err := rt.manager.Edit(c.Context, id, rt.manager.Draft())
			if err != nil {
				return submitError(rt.out, err)
			}

			fmt.Fprintln(rt.out, "Reserva actualizada.")
			printReservation(rt.out, *res)
			return nil
		}),
	}
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "cancel a reservation",
		ArgsUsage: "ID",
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			id := c.Args().First()
			if id == "" {
				return cli.Exit("reservation ID is required", 2)
			}
			if err := rt.manager.Cancel(c.Context, id); err != nil {
				return submitError(rt.out, err)
			}
			fmt.Fprintln(rt.out, "Tu reserva ha sido cancelada exitosamente.")
			return nil
		}),
	}
}

func calendarCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "show a month with reserved days marked",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "month", Aliases: []string{"m"}, Usage: "month to show, YYYY-MM (default: current)"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			picker := calendar.NewPicker(nil, nil)
			if c.IsSet("month") {
				target, err := time.Parse("2006-01", c.String("month"))
				if err != nil {
					return cli.Exit("month must be in YYYY-MM format", 2)
				}
				moveTo(picker, target.Year(), target.Month())
			}

			year, month := picker.Month()
			return calendar.Render(rt.out, year, month, picker.Cells(rt.manager.ActiveDates()))
		}),
	}
}

// moveTo steps the picker to year/month using its navigation controls.
func moveTo(p *calendar.Picker, year int, month time.Month) {
	y, m := p.Month()
	for y < year {
		p.NextYear()
		y++
	}
	for y > year {
		p.PrevYear()
		y--
	}
	for ; m < month; m++ {
		p.NextMonth()
	}
	for ; m > month; m-- {
		p.PrevMonth()
	}
}

func notificationsCommand() *cli.Command {
	return &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notif"},
		Usage:   "show and manage notifications",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "read", Usage: "mark one notification as read"},
			&cli.BoolFlag{Name: "read-all", Usage: "mark every notification as read"},
			&cli.StringFlag{Name: "remove", Usage: "delete one notification"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			if id := c.String("read"); id != "" && !rt.inbox.MarkRead(id) {
				return cli.Exit(fmt.Sprintf("notification %s not found", id), 1)
			}
			if c.Bool("read-all") {
				rt.inbox.MarkAllRead()
			}
			if id := c.String("remove"); id != "" && !rt.inbox.Remove(id) {
				return cli.Exit(fmt.Sprintf("notification %s not found", id), 1)
			}

			fmt.Fprintf(rt.out, "Sin leer: %d\n", rt.inbox.UnreadCount())
			for _, n := range rt.inbox.List() {
				marker := " "
				if !n.Read {
					marker = "•"
				}
				fmt.Fprintf(rt.out, "%s %s  %s  %s\n    %s\n", marker, n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Title, n.Message)
			}
			return nil
		}),
	}
}

func backupCommand() *cli.Command {
	newService := func(rt *runtime) *backup.BackupService {
		return backup.NewBackupService(rt.repo, rt.cfg.Backup, rt.logger)
	}

	return &cli.Command{
		Name:  "backup",
		Usage: "snapshot, list, restore or prune reservation backups",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "write a snapshot of the reservation table",
				Action: withRuntime(func(c *cli.Context, rt *runtime) error {
					svc := newService(rt)
					path, err := svc.PerformBackup(c.Context)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					removed := svc.CleanupOldBackups()
					fmt.Fprintf(rt.out, "backup written to %s (%d old removed)\n", path, removed)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list backup files",
				Action: withRuntime(func(c *cli.Context, rt *runtime) error {
					files, err := newService(rt).List()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					for _, f := range files {
						fmt.Fprintln(rt.out, f)
					}
					return nil
				}),
			},
			{
				Name:      "restore",
				Usage:     "replace the reservation table with a backup",
				ArgsUsage: "FILE",
				Action: withRuntime(func(c *cli.Context, rt *runtime) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("backup file is required", 2)
					}
					if err := newService(rt).Restore(c.Context, path); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Fprintf(rt.out, "restored %s\n", path)
					return nil
				}),
			},
		},
	}
}

// submitError prints validation messages one per line; other failures
// become a single retryable error.
func submitError(out io.Writer, err error) error {
	if verrs, ok := validator.AsValidationErrors(err); ok {
		for _, msg := range verrs.Messages() {
			fmt.Fprintf(out, "- %s\n", msg)
		}
		return cli.Exit("reservation rejected", 2)
	}

	switch {
	case errors.Is(err, service.ErrReservationNotFound), errors.Is(err, service.ErrReservationCancelled):
		return cli.Exit(err.Error(), 1)
	default:
		return cli.Exit(fmt.Sprintf("could not save, please try again: %v", err), 1)
	}
}

func printReservation(out io.Writer, r models.Reservation) {
	line := fmt.Sprintf("%s  %s %s  %d pers.  %-8s  %s", r.ID, r.Date, r.Time, r.PartySize, r.Table, models.StatusLabel(r.Status))
	if c := strings.TrimSpace(r.Comments); c != "" {
		line += "  \"" + c + "\""
	}
	fmt.Fprintln(out, line)
}
