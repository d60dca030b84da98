// Command zip-backend-stub serves the zip processing API locally: uploads are
// echoed back and the example request returns a fixed archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"

	"github.com/ytget/zip-uploader/internal/logging"
	"github.com/ytget/zip-uploader/internal/stubserver"
)

const shutdownTimeout = 10 * time.Second

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	example := flag.String("example", "data/example_handle.zip", "archive served by the example endpoint")
	bodyLimit := flag.String("body-limit", stubserver.DefaultBodyLimit, "maximum request body size")
	origins := flag.String("allow-origin", "*", "CORS allowed origin")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "console", "log encoding (console, json)")
	flag.Parse()

	logCfg := logging.DefaultConfig("zip-backend-stub")
	logCfg.Level = *logLevel
	logCfg.Encoding = *logFormat
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	srv := stubserver.New(stubserver.Config{
		ExamplePath:  *example,
		BodyLimit:    *bodyLimit,
		AllowOrigins: []string{*origins},
	}, logger)

	go func() {
		if err := srv.Start(*addr); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("graceful shutdown initiated")
				return srv.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("exited", zap.Int("code", exitCode))
	_ = logger.Sync()
	os.Exit(exitCode)
}
