package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/ytget/zip-uploader/internal/backend"
	"github.com/ytget/zip-uploader/internal/config"
	"github.com/ytget/zip-uploader/internal/logging"
	"github.com/ytget/zip-uploader/internal/platform"
	"github.com/ytget/zip-uploader/internal/session"
	"github.com/ytget/zip-uploader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.zip-uploader"
	AppName = "Zip Uploader"

	WindowWidth  = 560
	WindowHeight = 420
)

func main() {
	deployment, err := config.LoadDeployment(os.Getenv(config.EnvConfigPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "using default deployment config: %v\n", err)
	}
	deployment = deployment.ApplyEnv(os.Getenv)

	logCfg := logging.DefaultConfig("zip-uploader")
	logCfg.Level = deployment.LogLevel
	logCfg.Encoding = deployment.LogFormat
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting", zap.String("app", AppName), zap.String("version", version))

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(myApp)
	if err := platform.CreateDirectoryIfNotExists(settings.GetDownloadDirectory()); err != nil {
		logger.Warn("failed to ensure download directory", zap.Error(err))
	}

	clientCfg := backend.DefaultConfig(config.ResolveBackendURL(settings.GetBackendURL(), deployment))
	clientCfg.Timeout = deployment.RequestTimeout
	client, err := backend.NewClient(clientCfg, logger)
	if err != nil {
		logger.Warn("invalid backend URL, falling back to default", zap.Error(err))
		client, err = backend.NewClient(backend.DefaultConfig(config.DefaultBackendURL), logger)
		if err != nil {
			logger.Fatal("failed to create backend client", zap.Error(err))
		}
	}
	logger.Info("backend configured", zap.String("url", client.BaseURL()))

	sess := session.New(client, session.WithLogger(logger))
	ui.NewRootUI(myWindow, myApp, sess, settings, logger)

	myWindow.ShowAndRun()
	logger.Info("stopped")
}
