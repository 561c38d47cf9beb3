// @title EventConnect API
// @version 1.0
// @description Event networking backend: events, registrations, speakers, agenda, contacts and social accounts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by /auth/login.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventconnect/config"
	_ "eventconnect/docs"
	authadapter "eventconnect/internal/adapters/auth"
	httpapi "eventconnect/internal/delivery/http"
	"eventconnect/internal/delivery/http/controllers"
	"eventconnect/internal/delivery/http/middleware"
	"eventconnect/internal/domain"
	"eventconnect/internal/metrics"
	"eventconnect/internal/repository/postgres"
	"eventconnect/internal/services"
	"eventconnect/internal/session"
)

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs

const shutdownTimeout = 15 * time.Second

func main() {
	envErr := config.LoadEnvFile()
	logger := config.NewLogger()
	if envErr != nil {
		logger.Warn(".env file not loaded", "err", envErr)
	}
	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(db, logger); err != nil {
			return err
		}
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db, logger)
	speakerRepo := postgres.NewSpeakerRepository(db)
	agendaRepo := postgres.NewAgendaRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db, logger)
	contactRepo := postgres.NewContactRepository(db, logger)
	accountRepo := postgres.NewSocialAccountRepository(db)

	sessions := session.NewManager(postgres.NewAuthSessionRepository(db), cfg.JWTExpiry)
	observeSessions(sessions, logger)
	// Seeds the active sessions gauge from the store.
	if _, err := sessions.Sweep(ctx); err != nil {
		logger.Warn("initial session sweep failed", "err", err)
	}
	if cfg.SessionSweepInterval > 0 {
		go sessions.RunSweeper(ctx, cfg.SessionSweepInterval, logger)
	}

	hasher := authadapter.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	userSvc := services.NewUserService(userRepo, hasher, issuer, sessions, cfg.RequestTimeout)
	eventSvc := services.NewEventService(eventRepo, speakerRepo, agendaRepo, attendeeRepo, userRepo,
		postgres.NewTransactor(db, logger), cfg.RequestTimeout)
	attendeeSvc := services.NewAttendeeService(eventRepo, attendeeRepo, cfg.RequestTimeout)
	contactSvc := services.NewContactService(contactRepo, userRepo, cfg.RequestTimeout)
	socialSvc := services.NewSocialAccountService(accountRepo, cfg.RequestTimeout)

	mux := httpapi.NewRouter(httpapi.Controllers{
		Auth:     controllers.NewAuthController(logger, userSvc),
		User:     controllers.NewUserController(logger, userSvc),
		Event:    controllers.NewEventController(logger, eventSvc),
		Attendee: controllers.NewAttendeeController(logger, attendeeSvc),
		Contact:  controllers.NewContactController(logger, contactSvc),
		Social:   controllers.NewSocialController(logger, socialSvc),
	}, middleware.RequireAuth(verifier, sessions, logger), db)

	// Metrics wraps the mux directly so it sees the matched route pattern.
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, middleware.Metrics(mux)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// observeSessions logs session transitions and keeps the active sessions gauge.
// A rotation ends one session and starts another, so it leaves the gauge unchanged.
// Sweeps reset the gauge to the stored count, which corrects drift from expiry
// and from sessions started by other processes.
func observeSessions(m *session.Manager, logger *slog.Logger) {
	m.Subscribe(func(ev domain.SessionEvent) {
		switch ev.Kind {
		case domain.SessionsSwept:
			logger.Debug("sessions swept", "swept", ev.Swept, "active", ev.Active)
			metrics.SetActiveSessions(ev.Active)
			return
		case domain.SessionStarted:
			metrics.SessionStarted()
		case domain.SessionEnded:
			metrics.SessionEnded()
		}
		logger.Info("session "+string(ev.Kind), "user_id", ev.Session.UserID, "session_id", ev.Session.ID)
	})
}
