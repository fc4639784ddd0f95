// Package main boots the Stockkeeper HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/stockkeeper/internal/backup"
	"github.com/fairyhunter13/stockkeeper/internal/catalog"
	"github.com/fairyhunter13/stockkeeper/internal/config"
	httpapi "github.com/fairyhunter13/stockkeeper/internal/http"
	"github.com/fairyhunter13/stockkeeper/internal/obs"
	"github.com/fairyhunter13/stockkeeper/internal/persist"
	"github.com/fairyhunter13/stockkeeper/internal/sales"
	"github.com/fairyhunter13/stockkeeper/internal/store"
)

func main() {
	cfg := config.Load()
	obs.Setup(cfg.LogLevel, cfg.LogFile)
	obs.Logger.Info("service_starting", "storage_driver", cfg.StorageDriver)

	slot, err := persist.Open(cfg)
	if err != nil {
		obs.Logger.Error("storage_open_error", "error", err)
		os.Exit(1)
	}
	defer slot.Close()

	st := store.New(slot)
	st.Load()
	loc := cfg.Location()
	cat := catalog.NewManager(st)
	eng := sales.NewEngine(st, loc)

	var sched *backup.Scheduler
	if cfg.BackupSchedule != "" {
		sched = backup.NewScheduler(st, cfg.BackupDir, loc)
		if err := sched.Start(cfg.BackupSchedule); err != nil {
			obs.Logger.Error("backup_scheduler_error", "error", err)
			os.Exit(1)
		}
	}

	app := httpapi.NewApp(cfg, st, cat, eng)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()
	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	if sched != nil {
		sched.Stop()
	}
	if err := st.Save(); err != nil {
		obs.Logger.Warn("final_save_failed", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
