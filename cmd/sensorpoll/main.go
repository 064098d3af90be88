// Package main polls the motion sensors described by a config file and logs their readings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/motionsensors/components/board/genericlinux"
	"go.viam.com/motionsensors/components/movementsensor"
	"go.viam.com/motionsensors/components/movementsensor/poller"
	// register sensor models.
	_ "go.viam.com/motionsensors/components/register"
	"go.viam.com/motionsensors/config"
	"go.viam.com/motionsensors/logging"
	"go.viam.com/motionsensors/registry"
)

const (
	flagConfig         = "config"
	flagDebug          = "debug"
	flagReportInterval = "report-interval"
	flagLogFile        = "log-file"

	logFileMaxSizeMB  = 16
	logFileMaxBackups = 3
)

// sensorPoll holds the process-wide state the command sets up before running.
type sensorPoll struct {
	logger  logging.Logger
	logFile *logging.FileAppender
}

func main() {
	logger := logging.NewLogger("sensorpoll")
	logging.ReplaceGlobal(logger)

	sp := &sensorPoll{logger: logger}
	err := sp.app().Run(os.Args)
	if err != nil {
		logger.Error(err)
	}
	if closeErr := sp.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func (sp *sensorPoll) app() *cli.App {
	return &cli.App{
		Name:  "sensorpoll",
		Usage: "poll motion sensors on a Linux board",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagConfig,
				Aliases:  []string{"c"},
				Usage:    "load configuration from `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.DurationFlag{
				Name:  flagReportInterval,
				Value: time.Second,
				Usage: "how often to log readings",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
		},
		Before: sp.before,
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String(flagConfig), c.Duration(flagReportInterval), sp.logger)
		},
	}
}

func (sp *sensorPoll) before(c *cli.Context) error {
	if interval := c.Duration(flagReportInterval); interval <= 0 {
		return errors.Errorf("--%s must be positive, got %s", flagReportInterval, interval)
	}
	if c.Bool(flagDebug) {
		sp.logger.SetLevel(logging.DEBUG)
	}
	if path := c.String(flagLogFile); path != "" {
		sp.logFile = logging.NewFileAppender(path, logFileMaxSizeMB, logFileMaxBackups)
		sp.logger.AddAppender(sp.logFile)
	}
	return nil
}

// close flushes the logger and closes the log file, if one was opened.
func (sp *sensorPoll) close() error {
	err := sp.logger.Sync()
	if sp.logFile != nil {
		err = multierr.Combine(err, sp.logFile.Close())
	}
	return err
}

func run(ctx context.Context, configPath string, reportInterval time.Duration, logger logging.Logger) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Read(ctx, configPath, logger)
	if err != nil {
		return err
	}
	if cfg.Debug {
		logger.SetLevel(logging.DEBUG)
	}
	if err := registry.ConvertAttributes(cfg); err != nil {
		return err
	}
	interval, err := cfg.PollDuration()
	if err != nil {
		return err
	}

	b, err := genericlinux.NewBoard(ctx, &cfg.Board, logger.Sublogger("board"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close(context.Background()))
	}()

	sensors := make(map[string]movementsensor.Sensor, len(cfg.Components))
	defer func() {
		for name, sensor := range sensors {
			if closeErr := sensor.Close(context.Background()); closeErr != nil {
				err = multierr.Combine(err, errors.Wrapf(closeErr, "closing %q", name))
			}
		}
	}()
	for _, conf := range cfg.Components {
		sensor, err := registry.NewComponent(ctx, b, conf, logger)
		if err != nil {
			return errors.Wrapf(err, "can't build %s %q", conf.Model, conf.Name)
		}
		sensors[conf.Name] = sensor
		logger.Infow("sensor ready", "name", conf.Name, "model", conf.Model)
	}

	p, err := poller.New(sensors, interval, nil, logger.Sublogger("poller"))
	if err != nil {
		return err
	}
	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.Close()

	report := clock.New().Ticker(reportInterval)
	defer report.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-report.C:
			readings, err := p.Readings(ctx)
			if err != nil {
				logger.Warnw("readings unavailable", "error", err)
			}
			for name, r := range readings {
				logger.Infow("readings", "sensor", name, "readings", r)
			}
		}
	}
}
