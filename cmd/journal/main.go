package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pbaille/journal/internal/api"
	"github.com/pbaille/journal/internal/config"
	"github.com/pbaille/journal/internal/delegate"
	"github.com/pbaille/journal/internal/router"
	"github.com/pbaille/journal/internal/store"
	"github.com/pbaille/journal/internal/tools"
)

var (
	configPath string
	modelFlag  string
	debugFlag  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Conversational journal assistant",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model name (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// session is one running assistant with its own in-memory store
type session struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
	router *router.Router
}

func (s *session) Close() {
	s.store.Close()
	s.logger.Sync()
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if debugFlag {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	s, err := store.New()
	if err != nil {
		return nil, err
	}

	client, err := delegate.NewGemini(ctx, cfg.APIKey, tools.Declarations(),
		delegate.WithModel(cfg.Model),
		delegate.WithRetryPolicy(delegate.LinearBackoff(cfg.MaxAttempts, cfg.BackoffUnit)),
		delegate.WithLogger(logger.Named("delegate")),
	)
	if err != nil {
		s.Close()
		return nil, err
	}

	r := router.New(s, client, tools.New(s, logger.Named("tools")),
		router.WithContextSize(cfg.ContextSize),
		router.WithLogger(logger.Named("router")),
	)

	return &session{cfg: cfg, logger: logger, store: s, router: r}, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive journal session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			prompt := color.New(color.FgCyan, color.Bold)
			dim := color.New(color.Faint)

			fmt.Println("AI Journal: type a message, or /entries, /clear, /quit")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				prompt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())

				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/entries":
					printEntries(sess.store, dim)
					continue
				case "/clear":
					if err := sess.router.Clear(); err != nil {
						fmt.Printf("clear failed: %v\n", err)
						continue
					}
					fmt.Println("Cleared all entries.")
					continue
				}

				fmt.Println(sess.router.Handle(cmd.Context(), line))
			}

			return scanner.Err()
		},
	}
}

func printEntries(s *store.Store, dim *color.Color) {
	entries, err := s.Entries()
	if err != nil {
		fmt.Printf("list failed: %v\n", err)
		return
	}

	fmt.Printf("Total entries: %d\n", len(entries))
	// newest first, like the sidebar
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		content := e.Content
		if content == "" {
			content = "No details available"
		}
		tags := "None"
		if len(e.Tags) > 0 {
			tags = strings.Join(e.Tags, ", ")
		}

		fmt.Printf("%s  %s\n", capitalize(e.Category), dim.Sprint(e.Timestamp.Format("2006-01-02 15:04")))
		fmt.Printf("  %s\n", truncate(content, 80))
		dim.Printf("  Tags: %s\n", tags)
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [message]",
		Short: "Process a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			fmt.Println(sess.router.Handle(cmd.Context(), strings.Join(args, " ")))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			// Note: don't close the session as the server runs indefinitely

			if addr == "" {
				addr = sess.cfg.Addr
			}
			fmt.Printf("Starting server on %s\n", addr)
			server := api.New(sess.router, sess.store, addr, sess.logger.Named("api"))
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
