package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/in/console"
	mysql_adapter "github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/out/mysql"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/adapter/out/textfile"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/internal/config"
	"github.com/JoeShih716/go-mem-bank/internal/logging"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

func main() {
	app := &cli.App{
		Name:  "bank",
		Usage: "console bank ledger with PIN-protected accounts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the yaml config file",
				Value:   "config/config.yaml",
				EnvVars: []string{"BANK_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "data-file",
				Usage: "path to the accounts file (file driver)",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail on malformed records instead of stopping at them",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error",
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("bank: %v", err)
	}
}

func run(c *cli.Context) error {
	// 1. 載入設定 (flag 優先)
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("data-file") {
		cfg.Storage.Path = c.String("data-file")
	}
	if c.IsSet("strict") {
		cfg.Storage.Strict = c.Bool("strict")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. 初始化 logger
	logger, logCloser, err := logging.SetupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	entry := logging.WithSession(logger)

	// 3. PIN 演算法
	verifier, err := newVerifier(cfg.Pin)
	if err != nil {
		return err
	}

	// 4. 持久化
	store, closeStore, err := newStore(c.Context, cfg, entry)
	if err != nil {
		return err
	}
	defer closeStore()

	// 5. 帳本與互動選單
	con := console.New(console.NewPtermInput(), os.Stdout, entry)
	ledger := usecase.NewLedger(store, verifier, con, entry)
	if err := ledger.Load(c.Context); err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	entry.WithFields(logrus.Fields{
		"driver":   cfg.Storage.Driver,
		"accounts": ledger.Len(),
	}).Info("Bank.Start")

	err = con.Run(c.Context, ledger)
	entry.WithError(err).Info("Bank.Exit")
	return err
}

func newVerifier(cfg config.PinConfig) (domain.PinVerifier, error) {
	switch cfg.Scheme {
	case config.PinSchemeKeyed:
		v, err := domain.NewKeyedVerifier([]byte(cfg.Key))
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return domain.NewFNVVerifier(), nil
	}
}

func newStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (usecase.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		client, err := mysql.NewClient(ctx, cfg.MySQL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		store := mysql_adapter.NewStore(client, log)
		if err := store.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil
	default:
		store := textfile.NewStore(cfg.Storage.Path,
			textfile.WithStrict(cfg.Storage.Strict),
			textfile.WithLogger(log),
		)
		return store, func() {}, nil
	}
}
