package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillence/skillence/internal/config"
	"github.com/skillence/skillence/internal/generation"
	"github.com/skillence/skillence/internal/llm"
	"github.com/skillence/skillence/internal/logger"
	"github.com/skillence/skillence/internal/mailer"
	"github.com/skillence/skillence/internal/server"
	"github.com/skillence/skillence/internal/service"
	"github.com/skillence/skillence/internal/store"
	"github.com/skillence/skillence/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		cfg.Port = p
	}

	log, err := logger.New(cfg.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if err := cfg.LLM.Validate(); err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	provider, err := llm.NewProvider(ctx, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("init LLM provider: %w", err)
	}

	gen := generation.New(provider, generation.DefaultConfig(), log)
	svc := service.NewLessonService(gen, st.Lessons(), log)

	mail, err := mailer.New(ctx, cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	webHandler, err := web.NewHandler(st.Users(), svc, mail, cfg.SessionSecret, log)
	if err != nil {
		return fmt.Errorf("init web handler: %w", err)
	}

	router := server.NewRouter(server.RouterConfig{
		Lessons: server.NewLessonHandler(svc, log),
		Web:     webHandler,
		Log:     log,
		Mode:    cfg.Mode,
	})

	log.Info("server starting",
		"port", cfg.Port,
		"db", cfg.DBPath,
		"provider", cfg.LLM.Provider,
		"model", provider.ModelID(),
	)
	return router.Run(":" + cfg.Port)
}
