package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lm500_emulator/internal/config"
	"lm500_emulator/internal/handlers"
	"lm500_emulator/internal/lm500"
	"lm500_emulator/internal/logger"
	"lm500_emulator/internal/protocol"
	"lm500_emulator/internal/repository"
	"lm500_emulator/internal/repository/db"
	"lm500_emulator/internal/server"
	"lm500_emulator/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("configs", ".")
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	settings, err := cfg.Device.Settings()
	if err != nil {
		log.Fatalw("invalid device settings", "err", err)
	}
	emu := service.NewEmulator(lm500.NewDevice(settings))

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, emu, cfg, log)
	apiHandler := handlers.NewHandler(services, log.Named("http"), cfg.Auth.Enabled)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	runBackground(&wg, func() { services.Simulator.Run(ctx, cfg.Sim.Tick) })
	runStream(ctx, &wg, emu, cfg, log)

	srv := server.New(cfg.HTTP.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	waitForShutdown(cancel, srv, log)
	wg.Wait()
}

func runBackground(wg *sync.WaitGroup, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
	}()
}

// runStream starts the TCP protocol listener and, when configured, the
// serial port transport. Both share the one emulator.
func runStream(ctx context.Context, wg *sync.WaitGroup, emu *service.Emulator, cfg config.Config, log *logger.Logger) {
	stream := protocol.NewServer(emu, log.Named("stream"))

	runBackground(wg, func() {
		if err := stream.ListenAndServe(ctx, cfg.Stream.Addr); err != nil {
			log.Fatalw("error starting stream server", "err", err, "addr", cfg.Stream.Addr)
		}
	})

	if cfg.Serial.Port == "" {
		return
	}
	runBackground(wg, func() {
		if err := stream.ServeSerial(ctx, cfg.Serial.Port, cfg.Serial.BaudRate); err != nil {
			log.Errorw("serial transport stopped", "err", err, "port", cfg.Serial.Port)
		}
	})
}

func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops background loops
// and drains in-flight HTTP requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
