package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecomkit/storefront/config"
	"github.com/ecomkit/storefront/internal/adminapi"
	"github.com/ecomkit/storefront/internal/app"
	"github.com/ecomkit/storefront/internal/userapi"
	"github.com/ecomkit/storefront/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h        = flag.Bool("h", false, "help usage")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, restore the admin account, then exit")
	seed     = flag.Bool("seed", false, "seed demo products into an empty catalog, then exit")
)

func printHelp() {
	if *h {
		fmt.Fprintf(os.Stderr, "Usage: storefront [-c config.yml] [-initdb] [-seed]\n\n")
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()
	printHelp()

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.InitDirs()

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database tables recreated")
		return
	}
	if *seed {
		application.SeedDemoProducts()
		return
	}

	srv := webserver.NewServer(application)
	userapi.Register(srv)
	adminapi.Register(srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		zap.S().Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Errorf("web server stopped: %v", err)
	}
}
