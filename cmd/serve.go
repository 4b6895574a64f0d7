/*
Copyright © 2026 gemrag authors
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "gemrag/handler/http"
	"gemrag/src/fsutil"
	"gemrag/src/log"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rag gateway",
	Long:  `The serve command starts an HTTP server exposing /health, /rag/upload-files and /rag/chat.`,
	RunE:  RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) error {
	service, err := newFileSearchService()
	if err != nil {
		log.Error(err, "Failed to create file search service")
		return err
	}

	staging, err := fsutil.NewStaging(viper.GetString("rag.staging_dir"), fsutil.NewLocalFileStore())
	if err != nil {
		log.Error(err, "Failed to prepare staging directory")
		return err
	}

	handler := httpHdlr.NewHandler(service, staging)

	gin.SetMode(viper.GetString("server.mode"))
	r := gin.New()
	r.Use(gin.Recovery(), httpHdlr.RequestID(), httpHdlr.RequestLogger("/health"))

	handler.RegisterRoutes(r)
	if viper.GetBool("server.swagger") {
		httpHdlr.RegisterSwagger(r)
	}

	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", srv.Addr, "staging_dir", staging.Root())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			log.Error(err, "Failed to start server")
			return err
		}
		return nil
	case <-quit:
	}
	log.Info("Shutting down server...")

	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
		return err
	}

	log.Info("Server exited")
	return nil
}
