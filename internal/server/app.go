// Package server initializes and runs the wormkeeper application server.
// It wires storage, the domain services and the HTTP endpoint, and handles
// graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/wormkeeper/internal/logging"
	"github.com/dmitrijs2005/wormkeeper/internal/server/backup"
	"github.com/dmitrijs2005/wormkeeper/internal/server/config"
	"github.com/dmitrijs2005/wormkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/wormkeeper/internal/server/records"
	"github.com/dmitrijs2005/wormkeeper/internal/server/users"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	userService   *users.Service
	backupService *backup.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	repo := records.NewFileRepository(c.UsersDir)

	var mirror backup.Mirror
	if c.S3Bucket != "" {
		m, err := backup.NewS3Mirror(context.Background(), c)
		if err != nil {
			return nil, fmt.Errorf("s3 mirror init error: %w", err)
		}
		mirror = m
	}

	us := users.NewService(repo, c)
	bs := backup.NewService(c.UsersDir, c.BackupDir, mirror, logger)

	return &App{config: c, logger: logger, userService: us, backupService: bs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config, app.logger, app.userService, app.backupService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
