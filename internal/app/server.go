package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	stdsync "sync"
	"time"
)

// Serve запускает цикл синхронизации и HTTP сервер до отмены ctx
func (a *App) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Router,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
	}

	syncCtx, stopSync := context.WithCancel(ctx)
	defer stopSync()

	var wg stdsync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Reconciler.Run(syncCtx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.log.Info("Shutting down server...")
	case err = <-serveErr:
		a.log.Error("Server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		a.log.Error("Server forced to shutdown: %v", shutdownErr)
	}

	stopSync()
	wg.Wait()

	a.log.Info("Server stopped gracefully")
	return err
}
