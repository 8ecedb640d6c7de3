package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "tripform/internal/config"
	router "tripform/internal/http"
	"tripform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "tripform",
	Short:         "Trip report form backend",
	Long:          `Serves the trip report form: serial counter, PDF rendering, document upload relay and share links.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env, err := intconfig.LoadEnv()
		if err != nil {
			return err
		}
		log, err := utils.NewLogger(env.LogLevel, env.GinMode == gin.DebugMode)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		utils.SetLogger(log)
		cmd.SetContext(withEnv(cmd.Context(), env))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = utils.Logger().Sync()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, serialCmd, submitCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	env := envFrom(cmd.Context())
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	log := utils.Logger()

	store, err := openStore(cmd.Context(), env)
	if err != nil {
		return err
	}
	defer store.Close()

	uploader, err := newUploader(cmd.Context(), env)
	if err != nil {
		return err
	}

	r := router.NewRouter(env, router.Deps{
		Store:       store,
		Submissions: newSubmissionService(env, store, uploader, nil),
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr),
			zap.String("serial_store", env.SerialStore), zap.String("upload_backend", env.UploadBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
