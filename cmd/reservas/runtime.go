package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pensionado/internal/config"
	"pensionado/internal/domain"
	"pensionado/internal/events"
	"pensionado/internal/logging"
	"pensionado/internal/metrics"
	"pensionado/internal/repository"
	"pensionado/internal/service"
	"pensionado/internal/validator"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// runtime is the wired object graph for one command invocation.
type runtime struct {
	cfg     *config.Config
	logger  *zerolog.Logger
	closer  io.Closer
	kv      domain.KVStore
	repo    *repository.ReservationRepository
	notes   *repository.NotificationRepository
	session *service.AuthSession
	inbox   domain.NotificationCenter
	manager domain.ReservationManager
	out     io.Writer
}

func setup(c *cli.Context) (*runtime, error) {
	ctx := c.Context

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, err
	}
	logger := logging.Component(baseLogger, "cli")

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	kv, err := repository.NewKV(ctx, cfg, logging.Component(baseLogger, "storage"))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		closer: closer,
		kv:     kv,
		out:    c.App.Writer,
	}

	rt.repo = repository.NewReservationRepository(
		kv,
		cfg.Storage.Key,
		repository.RetryPolicyFromConfig(cfg.Storage.Retry),
		logging.Component(baseLogger, "reservation-store"),
	)
	// Only the inbox may degrade to memory; reservation writes must reach kv.
	inboxKV := repository.WithFailover(cfg, kv, logging.Component(baseLogger, "storage"))
	rt.notes = repository.NewNotificationRepository(inboxKV, logging.Component(baseLogger, "notification-store"))

	rt.session = service.NewAuthSession(cfg.Users, logging.Component(baseLogger, "auth"))
	if _, err := rt.session.SignIn(c.String("user")); err != nil {
		rt.close(ctx)
		return nil, fmt.Errorf("sign in %q: %w", c.String("user"), err)
	}

	bus := events.NewEventBus(logging.Component(baseLogger, "events"))
	inbox := service.NewNotificationService(logging.Component(baseLogger, "notifications"))
	inbox.Subscribe(bus)

	saved, err := rt.notes.Load(ctx, rt.session.CurrentUserID())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load notifications")
	} else {
		inbox.Restore(saved)
	}
	rt.inbox = inbox

	v := validator.NewReservationValidator(cfg.Reservations.Slots, cfg.Reservations.LeadTimeHours, logging.Component(baseLogger, "validator"))
	opts := []service.ManagerOption{
		service.WithTablePicker(service.RandomTable(cfg.Reservations.TableCount)),
		service.WithEventPublisher(bus),
	}
	if cfg.Reservations.SeedDemo {
		opts = append(opts, service.WithSeed(service.DemoSeed))
	}
	rt.manager = service.NewReservationManager(rt.repo, v, rt.session, logging.Component(baseLogger, "reservations"), opts...)

	return rt, nil
}

// close saves the inbox, dumps metrics and releases storage.
func (rt *runtime) close(ctx context.Context) {
	if rt.manager != nil {
		rt.manager.Close()
	}

	if userID := rt.session.CurrentUserID(); userID != "" && rt.inbox != nil {
		if err := rt.notes.Save(ctx, userID, rt.inbox.List()); err != nil {
			rt.logger.Error().Err(err).Msg("failed to save notifications")
		}
	}

	if rt.cfg.Monitoring.PrometheusEnabled {
		if err := writeMetrics(rt.cfg.Monitoring.TextfilePath); err != nil {
			rt.logger.Warn().Err(err).Str("path", rt.cfg.Monitoring.TextfilePath).Msg("failed to write metrics textfile")
		}
	}

	if err := rt.kv.Close(); err != nil {
		rt.logger.Warn().Err(err).Msg("failed to close storage")
	}
	if rt.closer != nil {
		_ = rt.closer.Close()
	}
}

func writeMetrics(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return metrics.WriteTextfile(path)
}

// withRuntime wires the graph, loads the user's reservations and runs action.
func withRuntime(action func(c *cli.Context, rt *runtime) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		rt, err := setup(c)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer rt.close(c.Context)

		if err := rt.manager.Load(c.Context); err != nil {
			return cli.Exit(fmt.Sprintf("could not load reservations, try again: %v", err), 1)
		}
		return action(c, rt)
	}
}
