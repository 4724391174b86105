// Command tale runs a story: as a single player game on the console, or
// as a multi user server reached over telnet and SSH.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tale/internal/config"
	"github.com/cory-johannsen/tale/internal/driver"
	"github.com/cory-johannsen/tale/internal/frontend/console"
	"github.com/cory-johannsen/tale/internal/frontend/sshd"
	"github.com/cory-johannsen/tale/internal/frontend/telnet"
	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/observability"
	"github.com/cory-johannsen/tale/internal/server"
	"github.com/cory-johannsen/tale/internal/storage/boltstore"
	"github.com/cory-johannsen/tale/internal/storage/postgres"
	"github.com/cory-johannsen/tale/internal/story"
	_ "github.com/cory-johannsen/tale/stories/demo"
)

// ifLogFile is where a console game logs when no log file is configured.
const ifLogFile = "tale.log"

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file")
	storyFlag := flag.String("g", "", "story to run: a registered story name or a story directory")
	modeFlag := flag.String("m", "", "game mode, if or mud (default: the story's first mode)")
	tickFlag := flag.String("t", "", "server tick method, timer or command (default: the story's)")
	debug := flag.Bool("d", false, "debug logging, and wizard privileges for the console player")
	flag.Parse()

	v, err := config.New(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	for key, val := range map[string]string{
		"server.story":       *storyFlag,
		"server.mode":        *modeFlag,
		"server.tick_method": *tickFlag,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	if *debug {
		v.Set("server.debug", true)
		v.Set("logging.level", "debug")
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st, err := story.Open(cfg.Server.Story)
	if err != nil {
		log.Fatalf("%v", err)
	}
	mode := story.Mode(cfg.Server.Mode)
	if mode == "" {
		mode = st.Config().SupportedModes[0]
	}
	if mode == story.ModeIF {
		cfg.Logging.Quiet = true
		if cfg.Logging.File == "" {
			cfg.Logging.File = ifLogFile
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting tale",
		zap.String("story", st.Config().Name),
		zap.String("story_version", st.Config().Version),
		zap.String("mode", string(mode)),
		zap.String("engine", story.EngineVersion),
	)

	lifecycle := server.NewLifecycle(logger)
	opts := driver.Options{
		Story:         st,
		Mode:          mode,
		TickMethod:    story.TickMethod(cfg.Server.TickMethod),
		TranscriptDir: cfg.Server.TranscriptDir,
		Wizard:        cfg.Server.Debug,
		Dice:          dice.NewCryptoSource(),
		Logger:        logger,
	}
	if err := openStores(cfg, mode, st.Config(), &opts, lifecycle, logger); err != nil {
		logger.Fatal("opening stores", zap.Error(err))
	}

	d, err := driver.New(opts)
	if err != nil {
		logger.Fatal("starting driver", zap.Error(err))
	}
	runCtx, stopDriver := context.WithCancel(context.Background())
	lifecycle.Add("driver", &server.FuncService{
		StartFn: func() error { return d.Run(runCtx) },
		StopFn: func() {
			stopDriver()
			<-d.Done()
		},
	})

	if mode == story.ModeIF {
		if err := addConsole(lifecycle, d); err != nil {
			logger.Fatal("opening console", zap.Error(err))
		}
	} else if err := addAcceptors(cfg, lifecycle, d, logger); err != nil {
		logger.Fatal("starting acceptors", zap.Error(err))
	}

	logger.Info("tale initialized", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Error("server error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// openStores connects the account and savegame stores the mode needs. In
// mud mode postgres keeps the accounts; otherwise savegames go to postgres
// when it is enabled and to a local bolt file when not.
func openStores(cfg config.Config, mode story.Mode, sc *story.Config, opts *driver.Options, lc *server.Lifecycle, logger *zap.Logger) error {
	if mode == story.ModeMUD && !cfg.Database.Enabled {
		return fmt.Errorf("mud mode needs database.enabled for player accounts")
	}
	if cfg.Database.Enabled {
		ctx := context.Background()
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		addHealthCheck(lc, pool, logger)
		opts.Accounts = postgres.NewAccountRepository(pool.DB())
		if sc.SavegamesEnabled {
			opts.Savegames = postgres.NewSavegameRepository(pool.DB())
		}
		return nil
	}
	if !sc.SavegamesEnabled {
		return nil
	}
	store, err := boltstore.Open(cfg.Savegame.Path, logger)
	if err != nil {
		return err
	}
	logger.Info("savegame store opened", zap.String("path", store.Path()))
	quit := make(chan struct{})
	lc.Add("savegames", &server.FuncService{
		StartFn: func() error {
			<-quit
			return nil
		},
		StopFn: func() {
			close(quit)
			if err := store.Close(); err != nil {
				logger.Warn("closing savegame store", zap.Error(err))
			}
		},
	})
	opts.Savegames = store
	return nil
}

func addHealthCheck(lc *server.Lifecycle, pool *postgres.Pool, logger *zap.Logger) {
	quit := make(chan struct{})
	lc.Add("postgres", &server.FuncService{
		StartFn: func() error {
			t := time.NewTicker(30 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-quit:
					return nil
				case <-t.C:
					if err := pool.Health(context.Background(), 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(quit)
			pool.Close()
		},
	})
}

func addConsole(lc *server.Lifecycle, d *driver.Driver) error {
	conn, err := console.Open(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	lc.Add("console", &server.FuncService{
		StartFn: func() error { return d.Serve(context.Background(), conn) },
		StopFn:  func() { _ = conn.Close() },
	})
	return nil
}

func addAcceptors(cfg config.Config, lc *server.Lifecycle, d *driver.Driver, logger *zap.Logger) error {
	if cfg.Telnet.Enabled {
		acc := telnet.NewAcceptor(cfg.Telnet, d, logger)
		lc.Add("telnet", &server.FuncService{
			StartFn: acc.ListenAndServe,
			StopFn:  acc.Stop,
		})
	}
	if cfg.SSH.Enabled {
		srv, err := sshd.NewServer(cfg.SSH, d, logger)
		if err != nil {
			return err
		}
		lc.Add("ssh", &server.FuncService{
			StartFn: srv.ListenAndServe,
			StopFn:  srv.Stop,
		})
	}
	return nil
}
