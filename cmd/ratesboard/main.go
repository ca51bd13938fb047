package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robotomize/ratesboard"
	"github.com/robotomize/ratesboard/display"
	"github.com/robotomize/ratesboard/internal/config"
	"github.com/robotomize/ratesboard/internal/logging"
	"github.com/robotomize/ratesboard/internal/server"
	"github.com/robotomize/ratesboard/provider/httputil"
	"github.com/robotomize/ratesboard/provider/sheet"
	"golang.org/x/sync/errgroup"
)

type flags struct {
	config   string
	env      string
	addr     string
	logLevel string
	url      string
}

func parseFlags(args []string) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("ratesboard", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "path to the YAML config file")
	fs.StringVar(&f.env, "env", "", "path to a dotenv file, .env is read when present")
	fs.StringVar(&f.addr, "addr", "", "HTTP listen address, overrides server.addr")
	fs.StringVar(&f.logLevel, "log-level", "", "log level, overrides log.level")
	fs.StringVar(&f.url, "url", "", "published CSV address, overrides source.url")

	if err := fs.Parse(args); err != nil {
		return f, fmt.Errorf("flag parse: %w", err)
	}

	return f, nil
}

func loadConfig(f flags) (*config.Config, error) {
	envPath, required := f.env, true
	if envPath == "" {
		envPath, required = ".env", false
	}

	if err := config.LoadEnv(envPath, required); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if f.config != "" {
		loaded, err := config.LoadWithDefaults(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.url != "" {
		cfg.Source.URL = f.url
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func newDisplay(cfg *config.Config) (*display.Display, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var view *display.Display
	if cfg.Display.Layout == "" {
		view, err = display.Default(display.WithLocation(loc))
	} else {
		f, openErr := os.Open(cfg.Display.Layout)
		if openErr != nil {
			return nil, fmt.Errorf("open layout: %w", openErr)
		}
		defer f.Close()

		view, err = display.New(f, display.WithLocation(loc))
	}
	if err != nil {
		return nil, fmt.Errorf("display: %w", err)
	}

	view.SetReload(cfg.Display.Reload)

	return view, nil
}

func newBoard(cfg *config.Config, view *display.Display) (*ratesboard.Board, error) {
	u, err := cfg.SourceURL()
	if err != nil {
		return nil, err
	}

	format, err := sheet.ParseFormat(cfg.Source.Format)
	if err != nil {
		return nil, err
	}

	source := sheet.NewSource(
		httputil.DefaultClient(),
		sheet.WithURL(*u),
		sheet.WithFormat(format),
		sheet.WithMaxBodySize(cfg.Source.MaxBodySize),
		sheet.WithCacheBustParam(cfg.Source.CacheBustParam),
	)

	return ratesboard.New(
		source,
		view,
		ratesboard.WithRequestTimeout(cfg.Source.RequestTimeout),
		ratesboard.WithRetryNum(cfg.Source.RetryNum),
		ratesboard.WithRetryDuration(cfg.Source.RetryDuration),
		ratesboard.WithRefreshInterval(cfg.Display.RefreshInterval),
		ratesboard.WithSlideDuration(cfg.Display.SlideDuration),
	), nil
}

func realMain(ctx context.Context, cfg *config.Config) error {
	logger := logging.FromContext(ctx)

	view, err := newDisplay(cfg)
	if err != nil {
		return err
	}

	board, err := newBoard(cfg, view)
	if err != nil {
		return err
	}

	srv := server.New(
		board,
		server.WithAddr(cfg.Server.Addr),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithLogger(logger),
	)

	logger.Infow("starting ratesboard",
		"source", cfg.Source.URL,
		"addr", cfg.Server.Addr,
		"slides", view.SlideCount(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return board.Run(ctx)
	})
	g.Go(func() error {
		return srv.ListenAndServe(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.DefaultLogger()

	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Fatalf("%v", err)
	}

	cfg, err := loadConfig(f)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	logger, err = logging.NewLogger(cfg.Log.Level)
	if err != nil {
		logging.DefaultLogger().Fatalf("logger: %v", err)
	}
	logger = logger.Named("ratesboard")
	defer func() {
		_ = logger.Sync()
	}()

	ctx = logging.WithLogger(ctx, logger)

	if err := realMain(ctx, cfg); err != nil {
		logger.Fatalf("%v", err)
	}
}
