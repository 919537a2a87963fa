package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"quizrun/internal/bank"
	appI18n "quizrun/internal/i18n"
	"quizrun/internal/model"
	"quizrun/internal/questions"
	"quizrun/internal/quiz"
	"quizrun/internal/ui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quizrun",
		Short: "Terminal multiple-choice quiz client",
	}

	play := playCmd()
	root.AddCommand(play, bankCmd())

	// Make "play" the default when no subcommand is given.
	root.RunE = play.RunE

	// Register play flags on root so bare `quizrun --service-url ...` still works.
	root.Flags().AddFlagSet(play.Flags())

	return root
}

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz against a question service",
		RunE:  runPlay,
	}
	f := cmd.Flags()
	f.StringP("service-url", "s", "http://localhost:8080", "Question service base URL")
	f.StringSlice("levels", []string{"easy", "medium", "hard"}, "Levels offered by the selection menu")
	f.IntP("num-questions", "n", 0, "Number of questions per session (0 = all fetched)")
	f.Duration("timeout", 10*time.Second, "Question fetch timeout")
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func bankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Serve a local question bank for development",
		RunE:  runBank,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "quizbank.db", "SQLite database path")
	f.StringSliceP("questions", "q", []string{"questions/general.json"}, "Paths to questions JSON files (repeatable)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance. A config file is optional; its absence is not an error.
func viperForCmd(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizrun")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizrun")
	v.AddConfigPath("/etc/quizrun")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return v, fmt.Errorf("read config file: %w", err)
		}
	}

	return v, nil
}

// quizConfigFrom collects the play settings out of viper.
func quizConfigFrom(v *viper.Viper) model.QuizConfig {
	cfg := model.QuizConfig{
		ServiceURL:   v.GetString("service-url"),
		NumQuestions: v.GetInt("num-questions"),
		Timeout:      v.GetDuration("timeout"),
		Lang:         v.GetString("lang"),
	}
	for _, name := range v.GetStringSlice("levels") {
		cfg.Levels = append(cfg.Levels, model.Level(name))
	}
	return cfg
}

func runPlay(cmd *cobra.Command, _ []string) error {
	v, cfgErr := viperForCmd(cmd)
	setupLogging(v)
	if cfgErr != nil {
		slog.Warn("ignoring config file", "error", cfgErr)
	}

	cfg := quizConfigFrom(v)
	if len(cfg.Levels) == 0 {
		return fmt.Errorf("at least one level is required")
	}

	if err := appI18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	client := questions.New(cfg.ServiceURL, questions.WithTimeout(cfg.Timeout))
	loader := quiz.NewLoader(client, quiz.WithLimit(cfg.NumQuestions))

	u := ui.New(loader, cfg, os.Stdin, os.Stdout)
	return u.Run(context.Background())
}

func runBank(cmd *cobra.Command, _ []string) error {
	v, cfgErr := viperForCmd(cmd)
	setupLogging(v)
	if cfgErr != nil {
		slog.Warn("ignoring config file", "error", cfgErr)
	}

	db, err := bank.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, path := range v.GetStringSlice("questions") {
		if _, err := db.ImportFile(path); err != nil {
			return fmt.Errorf("import questions: %w", err)
		}
	}

	count, err := db.QuestionCount()
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}

	srv := bank.NewServer(db)
	addr := v.GetString("addr")
	slog.Info("starting question bank", "addr", addr, "db", v.GetString("db"), "questions", count)
	return http.ListenAndServe(addr, srv.Routes())
}
