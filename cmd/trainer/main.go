package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/trainer/internal/content"
	"github.com/pavelanni/trainer/internal/handler"
	appI18n "github.com/pavelanni/trainer/internal/i18n"
	"github.com/pavelanni/trainer/internal/model"
	"github.com/pavelanni/trainer/internal/quiz"
	"github.com/pavelanni/trainer/internal/store"
)

// defaultSource names the embedded sample content in the import ledger.
const defaultSource = "embedded:default"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trainer",
		Short: "Exam preparation quiz with instant answer checking",
	}

	serve := serveCmd()
	root.AddCommand(serve, playCmd(), exportContentCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `trainer --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "trainer.db", "SQLite content database path")
	f.StringSliceP("content", "c", nil, "Paths to content JSON files (repeatable, default: built-in sample)")
	f.StringP("lang", "l", "ru", "UI language (ru, en)")
	f.Duration("session-ttl", quiz.DefaultSessionTTL, "Idle time after which a quiz session is discarded")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /ege)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take the quiz in the terminal",
		RunE:  runPlay,
	}
	f := cmd.Flags()
	f.StringSliceP("content", "c", nil, "Paths to content JSON files (repeatable, default: built-in sample)")
	f.StringP("lang", "l", "ru", "UI language (ru, en)")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-content",
		Short: "Export the stored question set and subjects as JSON",
		RunE:  runExportContent,
	}
	f := cmd.Flags()
	f.String("db", "trainer.db", "SQLite content database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
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

// viperForCmd binds a command's flags and environment to a fresh viper instance.
// A .env file in the working directory is loaded into the environment first.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error reading .env file", "error", err)
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("TRAINER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("trainer")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/trainer")
	v.AddConfigPath("/etc/trainer")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := importContent(db, v.GetStringSlice("content")); err != nil {
		return fmt.Errorf("import content: %w", err)
	}
	c, err := db.Content()
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if err := content.Validate(c); err != nil {
		return fmt.Errorf("stored content: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.QuizConfig{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		SessionTTL:    v.GetDuration("session-ttl"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := quiz.NewRegistry(c.Questions, cfg.SessionTTL)
	go sessions.RunJanitor(ctx, time.Minute)

	h := handler.New(sessions, c.Subjects, cfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"lang", lang,
			"questions", len(c.Questions),
			"subjects", len(c.Subjects),
			"session_ttl", cfg.SessionTTL,
			"base_path", basePath,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	c, err := content.Load(v.GetStringSlice("content"))
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	ctx := appI18n.WithLocalizer(cmd.Context(), appI18n.NewLocalizer(v.GetString("lang")))
	return play(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), quiz.NewSession(c.Questions))
}

func runExportContent(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	c, err := db.Content()
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	sources, err := db.GetMetadata("content_sources")
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	slog.Info("exporting content", "questions", len(c.Questions), "subjects", len(c.Subjects), "sources", sources)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

// importContent makes the store hold exactly the content read from paths,
// or the built-in sample content when paths is empty. All sources are merged
// before anything is written, so question IDs must be unique across files.
// When every source hashes the same as in the last import the store is left
// untouched.
func importContent(db *store.Store, paths []string) error {
	type source struct {
		name string
		data []byte
	}
	var sources []source
	if len(paths) == 0 {
		c, err := content.Default()
		if err != nil {
			return err
		}
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode default content: %w", err)
		}
		sources = append(sources, source{name: defaultSource, data: data})
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		sources = append(sources, source{name: path, data: data})
	}

	names := make([]string, 0, len(sources))
	hashes := make([]string, 0, len(sources))
	unchanged := true
	for _, src := range sources {
		names = append(names, src.name)
		hash := sha256sum(src.data)
		hashes = append(hashes, hash)

		storedHash, err := db.GetImportedFileHash(src.name)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", src.name, err)
		}
		if storedHash != hash {
			unchanged = false
		}
	}
	joined := strings.Join(names, ",")

	prevSources, err := db.GetMetadata("content_sources")
	if err != nil {
		return fmt.Errorf("read content sources: %w", err)
	}
	if unchanged && prevSources == joined {
		slog.Info("content unchanged, skipping import", "sources", joined)
		return nil
	}

	files := make([]model.ContentFile, 0, len(sources))
	for _, src := range sources {
		c, err := content.Parse(src.data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", src.name, err)
		}
		files = append(files, c)
	}
	merged, err := content.Merge(files...)
	if err != nil {
		return fmt.Errorf("merge %s: %w", joined, err)
	}

	if err := db.ReplaceContent(merged); err != nil {
		return fmt.Errorf("store content: %w", err)
	}
	for i, name := range names {
		if err := db.SetImportedFileHash(name, hashes[i]); err != nil {
			return fmt.Errorf("record import for %s: %w", name, err)
		}
	}
	if prevSources != "" && prevSources != joined {
		slog.Warn("content sources changed, question set replaced", "previous", prevSources, "sources", joined)
	}
	slog.Info("imported content", "sources", joined, "questions", len(merged.Questions), "subjects", len(merged.Subjects))

	return db.SetMetadata("content_sources", joined)
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
