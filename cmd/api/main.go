package main

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/bibliodesk/bibliodesk/pkg/config"
	"github.com/bibliodesk/bibliodesk/pkg/server"
	"github.com/bibliodesk/bibliodesk/pkg/store"
	syncworker "github.com/bibliodesk/bibliodesk/pkg/sync"
	"github.com/bibliodesk/bibliodesk/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting bibliodesk", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	st := store.New(cfg.DataDirectory)
	if err := st.Load(); err != nil {
		log.Err(err).Fatal("store error")
	}

	wrkr := syncworker.New(cfg, st)

	srv, err := server.New(cfg, st)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		addr := net.JoinHostPort(cfg.ServerHost, strconv.Itoa(cfg.ServerPort))
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		log.Info("server started", logger.Data{"port": listener.Addr().(*net.TCPAddr).Port})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start()
	log.Info("sync worker started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("sync worker shutdown")
}
