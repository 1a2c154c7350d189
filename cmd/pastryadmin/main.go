package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alchepastry/pastryadmin/config"
	"github.com/alchepastry/pastryadmin/internal/adminapi"
	"github.com/alchepastry/pastryadmin/internal/app"
	"github.com/alchepastry/pastryadmin/internal/webserver"
)

var (
	conffile = pflag.StringP("conf", "c", "", "config yaml file")
	port     = pflag.IntP("port", "p", 0, "web server port, overrides config")
	showConf = pflag.Bool("showconf", false, "print the effective config and exit")
)

func main() {
	pflag.Parse()

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Web.Port = *port
	}
	if *showConf {
		fmt.Printf("%+v\n", *cfg)
		return
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)

	srv := webserver.NewAdminServer(cfg)
	adminapi.Init(srv, application)

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "admin server")
		}
		return nil
	})

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Web.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"admin-server": func(ctx context.Context) error {
				zap.L().Info("shutting down admin server")
				return srv.Shutdown(ctx)
			},
		},
	)

	var exitCode int
	select {
	case exitCode = <-wait:
	case <-gctx.Done():
		exitCode = 1
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("server exited with error", zap.Error(err))
		exitCode = 1
	}
	application.Release()
	os.Exit(exitCode)
}
