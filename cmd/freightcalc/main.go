package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"freightcalc/internal/billing"
	"freightcalc/internal/config"
	"freightcalc/internal/freight"
	"freightcalc/internal/notify"
	"freightcalc/internal/reconcile"
	"freightcalc/internal/storage"
	"freightcalc/pkg/logger"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "freightcalc",
		Usage:   "Merge carrier, weight and address workbooks and compute freight charges",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error); overrides FREIGHT_LOG_LEVEL",
				EnvVars: []string{"FREIGHT_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			quoteCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Merge the three workbook groups and write the priced table",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "a",
				Usage:    "Carrier workbook(s) with management numbers and item names (.xlsx only)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "b",
				Usage:    "Weight and size report workbook(s) (.xlsx only)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "c",
				Usage:    "Bill of lading and address workbook(s) (.xlsx only)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "Output .xlsx path",
				Required: true,
			},
		},
		Action: runReconcile,
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price a single shipment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "weight", Aliases: []string{"w"}, Usage: "Actual weight in kg", Required: true},
			&cli.StringFlag{Name: "dims", Aliases: []string{"d"}, Usage: "Dimensions as L*W*H*Qty"},
			&cli.StringFlag{Name: "waybill", Usage: "Waybill number", Required: true},
			&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "Destination address"},
		},
		Action: runQuote,
	}
}

// setup loads configuration and the logger shared by every command.
func setup(c *cli.Context) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	return cfg, zapLogger, nil
}

func newProcessor(cfg *config.Config, zapLogger *zap.Logger) (*billing.Processor, error) {
	rates := freight.DefaultRateTable()
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	return billing.NewProcessor(
		freight.NewRateCalculator(rates),
		freight.NewSurchargeResolver(freight.DefaultSurchargeTable()),
		billing.Options{
			Workers:                 cfg.Workers,
			RejectNonPositiveWeight: cfg.StrictWeights,
		},
		zapLogger,
	), nil
}

func runReconcile(c *cli.Context) error {
	cfg, zapLogger, err := setup(c)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	processor, err := newProcessor(cfg, zapLogger)
	if err != nil {
		return err
	}

	notifiers := notify.Multi{notify.NewLog(zapLogger)}
	if cfg.Notify.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, cfg.Notify.RetryMaxTime, zapLogger)
		if err != nil {
			zapLogger.Warn("Telegram notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	workbooks := storage.NewWorkbooks(cfg.Sheets.OutputSheet, zapLogger)
	pipeline := reconcile.New(cfg, workbooks, workbooks, processor, notifiers, zapLogger)

	summary, err := pipeline.Run(ctx, reconcile.Inputs{
		A:      splitPaths(c.StringSlice("a")),
		B:      splitPaths(c.StringSlice("b")),
		C:      splitPaths(c.StringSlice("c")),
		Output: c.String("out"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, notify.FormatDone(*summary))
	return nil
}

func runQuote(c *cli.Context) error {
	cfg, zapLogger, err := setup(c)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	processor, err := newProcessor(cfg, zapLogger)
	if err != nil {
		return err
	}

	charge, err := processor.Price(billing.Shipment{
		ActualWeight: c.String("weight"),
		Dimensions:   c.String("dims"),
		WaybillID:    c.String("waybill"),
		Address:      c.String("address"),
	})
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "tier:            %s\n", charge.Tier)
	fmt.Fprintf(w, "billable weight: %s\n", charge.BillableWeight)
	fmt.Fprintf(w, "freight:         %s\n", charge.Freight)
	fmt.Fprintf(w, "region:          %s\n", charge.RegionKey)
	fmt.Fprintf(w, "surcharge:       %s\n", charge.Surcharge)
	fmt.Fprintf(w, "total:           %s\n", charge.Total)
	return nil
}

// splitPaths accepts repeated flags as well as "|"-joined lists.
func splitPaths(values []string) []string {
	var paths []string
	for _, v := range values {
		for _, p := range strings.Split(v, "|") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}
