package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobsy-backend/controllers"
	"jobsy-backend/controllers/authentication"
	"jobsy-backend/services"
)

type ServeCmd struct {
	Port string `help:"Listen port. Overrides PORT."`
}

func (s *ServeCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	if s.Port != "" {
		cfg.Port = s.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := ctx.Logger

	db, closeDB, err := ctx.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	events := services.EventPublisher(services.NopPublisher{})
	if cfg.RabbitMQURL != "" {
		rabbit, err := services.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.Warn().Err(err).Msg("application events disabled")
		} else {
			events = rabbit
			log.Info().Str("queue", cfg.RabbitMQQueue).Msg("publishing application events")
		}
	}
	defer events.Close()

	userStore := services.NewUserStore(db)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := services.SeedAdmin(context.Background(), userStore, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Info().Bool("created", created).Str("email", cfg.AdminEmail).Msg("admin account ensured")
	}

	issuer := services.NewSessionIssuer(userStore, []byte(cfg.JWTSecret), cfg.JWTTTL, log)
	catalog := services.NewCatalog(db, log)
	ledger := services.NewLedger(db, catalog, events, log)

	handler := controllers.NewHandler(controllers.Dependencies{
		DB:          db,
		Users:       userStore,
		Issuer:      issuer,
		Catalog:     catalog,
		Ledger:      ledger,
		Importer:    services.NewImporter(catalog, cfg.ImportFetchTimeout, log),
		Sessions:    authentication.NewSessionStore([]byte(cfg.SessionSecret), cfg.JWTTTL, cfg.SessionSecure),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.ImportFetchTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-runCtx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
