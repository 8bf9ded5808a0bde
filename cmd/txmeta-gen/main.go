package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vulcanize/go-codec-txmeta/config"
	"github.com/vulcanize/go-codec-txmeta/failure"
	"github.com/vulcanize/go-codec-txmeta/pipeline"
	"github.com/vulcanize/go-codec-txmeta/tracer"
)

var (
	logLevel = cli.StringFlag{
		Name:  "log-level",
		Usage: "Diagnostics level: debug, info, warn or error. Debug also prints every encoded sample",
		Value: "info",
	}
	outDir = cli.StringFlag{
		Name:  "out-dir",
		Usage: "Directory the bindings are written to, used by go:generate",
		Value: ".",
	}
	packageDirs = cli.BoolFlag{
		Name:  "package-dirs",
		Usage: "Write each snapshot into its own package directory below out-dir, used by go:generate",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "txmeta-gen"
	app.Version = "v0.0.1"
	app.Usage = "Generates Go bindings for every frozen TransactionStatusMeta layout"
	app.Flags = []cli.Flag{logLevel, outDir, packageDirs}
	app.Action = generate
	return app
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func generate(ctx *cli.Context) error {
	log, err := newLogger(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()
	tracer.SetLogger(log.Named("tracer"))
	pipeline.SetLogger(log.Named("pipeline"))

	cfg, err := config.Load()
	if err != nil {
		logFailure(log, err)
		return cli.NewExitError("invalid snapshot table", 1)
	}
	outputs, err := pipeline.Run(cfg, pipeline.Options{
		OutDir:      ctx.GlobalString(outDir.Name),
		PackageDirs: ctx.GlobalBool(packageDirs.Name),
	})
	if err != nil {
		logFailure(log, err)
		return cli.NewExitError("generation failed", 1)
	}
	for _, out := range outputs {
		log.Info("generated", zap.String("schema", out.SchemaName), zap.String("path", out.Path))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func logFailure(log *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}
	if stage, ok := failure.StageOf(err); ok {
		fields = append(fields, zap.String("stage", string(stage)))
	}
	log.Error("txmeta-gen failed", fields...)
}
