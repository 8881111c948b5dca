/*
Package main is the entry point for the HZ Chat terminal client.

It is responsible for loading configuration, initializing the logging system,
opening the local profile store, starting the reconnecting WebSocket channel,
running the terminal UI, and shutting everything down when the user quits or
the process receives SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hzchat-client/internal/app/chat"
	"hzchat-client/internal/app/identity"
	"hzchat-client/internal/app/session"
	"hzchat-client/internal/configs"
	"hzchat-client/internal/pkg/logx"
	"hzchat-client/internal/pkg/randx"
	"hzchat-client/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:           "hzchat",
	Short:         "Terminal client for HZ Chat group rooms",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClient,
}

func init() {
	configs.RegisterFlags(rootCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func runClient(cmd *cobra.Command, args []string) error {
	cfg, err := configs.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// The terminal belongs to the UI; logs go to a file.
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logx.InitGlobalLogger(cfg.IsDevelopment(), logFile)
	logx.WithSessionID(randx.SessionID())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("server_url", cfg.ServerURL).
		Str("data_path", cfg.DataPath).
		Bool("ephemeral", cfg.Ephemeral).
		Int64("max_avatar_bytes", cfg.MaxAvatarBytes).
		Msg("Configuration loaded successfully")

	storeDir := cfg.ProfileDir()
	if cfg.Ephemeral {
		storeDir = ""
	}
	store, err := identity.OpenStore(storeDir)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logx.Error(err, "Failed to close profile store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	channel := chat.NewWSChannel(chat.WSConfig{
		URL:               cfg.ServerURL,
		ReconnectInterval: cfg.ReconnectInterval,
		ReadLimit:         cfg.ReadLimit,
	})

	sess := session.New(session.Deps{
		Store:    store,
		Channel:  channel,
		Avatars:  identity.NewAvatarLoader(cfg.MaxAvatarBytes),
		Now:      time.Now,
		Location: time.Local,
	})

	channelCtx, cancelChannel := context.WithCancel(ctx)
	channelDone := make(chan error, 1)
	startChannel := func() {
		go func() {
			channelDone <- channel.Run(channelCtx)
		}()
	}

	uiErr := tui.Run(ctx, sess, startChannel)
	if ctx.Err() != nil {
		logx.Info("Received shutdown signal.")
	}

	cancelChannel()
	select {
	case err := <-channelDone:
		if err != nil {
			logx.Error(err, "Channel stopped with error")
		}
	case <-time.After(5 * time.Second):
		logx.Warn("Channel did not stop in time.")
	}

	logx.Info("Client stopped.")
	return uiErr
}
