// Command embervite runs the invitation API, its migrations and the invite dispatcher.
//
// @title Embervite API
// @version 1.0
// @description Recurring event invitations with one-click RSVP links.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"embervite/config"
	_ "embervite/docs"
	"embervite/internal/adapters/auth"
	"embervite/internal/adapters/calendar"
	"embervite/internal/adapters/email"
	httpdelivery "embervite/internal/delivery/http"
	"embervite/internal/delivery/http/controllers"
	"embervite/internal/delivery/http/middleware"
	"embervite/internal/domain"
	"embervite/internal/repository/postgres"
	"embervite/internal/services"
	"embervite/internal/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cliApp := &cli.App{
		Name:  "embervite",
		Usage: "Send recurring event invitations and collect RSVPs.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			dispatchCommand(),
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("embervite failed", "err", err)
		os.Exit(1)
	}
}

// setup loads config, builds the logger and opens the database.
func setup(ctx context.Context) (*config.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg)
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}
	return cfg, logger, db, nil
}

// app is the wired service graph shared by serve and dispatch.
type app struct {
	users     domain.UserService
	events    domain.EventService
	members   domain.MemberService
	dashboard domain.DashboardService
	rsvp      domain.RSVPService
	dispatch  domain.DispatchService
	jwt       *auth.JWT
}

func wire(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*app, error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create mailer: %w", err)
	}

	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewUserProfileRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	eventMemberRepo := postgres.NewEventMemberRepository(db)

	tokens := token.NewGenerator(cfg.TokenLength)
	jwt := auth.NewJWT(cfg.JWT.Secret, "embervite")
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	invites := services.NewInviteService(eventRepo, eventMemberRepo, userRepo, emailService, cfg.BaseURL, logger)

	events := services.NewEventService(eventRepo, memberRepo, eventMemberRepo, invites,
		calendar.NewEncoder("-//Embervite//Events//EN", "embervite"), tokens, cfg.RequestTimeout, cfg.InviteTimeout)
	members := services.NewMemberService(memberRepo, cfg.RequestTimeout)

	return &app{
		users: services.NewUserService(userRepo, profileRepo, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens,
			jwt, cfg.JWT.Expiry, emailService, logger, cfg.RequestTimeout),
		events:    events,
		members:   members,
		dashboard: services.NewDashboardService(events, members),
		rsvp:      services.NewRSVPService(eventMemberRepo, cfg.RequestTimeout),
		dispatch:  services.NewDispatchService(eventRepo, invites, logger),
		jwt:       jwt,
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply pending migrations before serving."},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, db, err := setup(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if c.Bool("migrate") {
				if _, err := postgres.Migrate(ctx, db, logger); err != nil {
					return err
				}
			}

			a, err := wire(cfg, logger, db)
			if err != nil {
				return err
			}
			limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: cfg.RSVP.RateLimit, Window: time.Minute})
			defer limiter.Stop()

			mux := httpdelivery.NewRouter(httpdelivery.Controllers{
				Users:     controllers.NewUserController(logger, a.users),
				Events:    controllers.NewEventController(logger, a.events),
				Members:   controllers.NewMemberController(logger, a.members, a.users),
				Data:      controllers.NewDataController(logger, a.events),
				Dashboard: controllers.NewDashboardController(logger, a.dashboard),
				RSVP:      controllers.NewRSVPController(logger, a.rsvp),
			}, middleware.RequireAuth(a.jwt, logger), middleware.RateLimit(limiter))

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           httpdelivery.Handler(mux, logger, cfg.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("server shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations.",
		Action: func(c *cli.Context) error {
			cfg, logger, db, err := setup(c.Context)
			if err != nil {
				return err
			}
			defer db.Close()
			applied, err := postgres.Migrate(c.Context, db, logger)
			if err != nil {
				return err
			}
			logger.Info("migrations complete", "applied", applied, "env", cfg.Environment)
			return nil
		},
	}
}

func dispatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "dispatch",
		Usage: "Send invites for events whose invite time has come.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "once", Usage: "Run a single dispatch pass and exit."},
			&cli.StringFlag{Name: "schedule", Usage: "Cron spec overriding DISPATCH_SCHEDULE."},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, db, err := setup(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			a, err := wire(cfg, logger, db)
			if err != nil {
				return err
			}

			run := func() {
				n, err := a.dispatch.DispatchDue(ctx, time.Now())
				if err != nil {
					logger.Error("dispatch pass failed", "dispatched", n, "err", err)
					return
				}
				logger.Info("dispatch pass complete", "dispatched", n)
			}

			if c.Bool("once") {
				n, err := a.dispatch.DispatchDue(ctx, time.Now())
				if err != nil {
					return fmt.Errorf("dispatch: %w", err)
				}
				logger.Info("dispatch pass complete", "dispatched", n)
				return nil
			}

			spec := cfg.Dispatch.Schedule
			if c.IsSet("schedule") {
				spec = c.String("schedule")
			}
			sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
			if _, err := sched.AddFunc(spec, run); err != nil {
				return fmt.Errorf("parse dispatch schedule %q: %w", spec, err)
			}
			logger.Info("dispatcher started", "schedule", spec)
			sched.Start()
			<-ctx.Done()
			logger.Info("dispatcher stopping")
			<-sched.Stop().Done()
			return nil
		},
	}
}
