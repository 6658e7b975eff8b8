// graphchat is a terminal chat client that renders graph replies as an
// interactive force-directed visualization.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphchat/cmd/graphchat/chat"
	"graphchat/cmd/graphchat/ui"
	"graphchat/internal/client"
	"graphchat/internal/config"
	"graphchat/internal/logging"
	"graphchat/internal/store"
	"graphchat/internal/watch"
)

const version = "1.0.0"

var (
	// Global flags
	verbose      bool
	apiKey       string
	modelName    string
	scenarioPath string
	graphFile    string
	sessionID    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "graphchat",
	Short: "graphchat - chat client with an interactive graph view",
	Long: `graphchat is a terminal chat client. Replies that carry a graph payload
mount a force-directed visualization you can pan, zoom, select and drag.

Run without arguments to start the interactive chat interface. Without an
API key it falls back to a built-in scripted scenario, so the graph view
works out of the box.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the graphchat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("graphchat v%s\n", version)
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored chat sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := logging.New(verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, _ := config.Load()
		logger.Debug("opening session store", zap.String("path", dbPath(cfg)))
		s, err := store.NewSessionStore(dbPath(cfg))
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer s.Close()

		infos, err := s.Sessions()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			color.New(color.Faint).Println("no stored sessions")
			return nil
		}
		bold := color.New(color.Bold)
		for _, info := range infos {
			bold.Print(info.ID)
			fmt.Printf("  %d turns  %s – %s\n",
				info.Turns,
				info.StartedAt.Format("2006-01-02 15:04"),
				info.LastAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides config and GEMINI_API_KEY)")
	rootCmd.Flags().StringVar(&modelName, "model", "", "Gemini model name")
	rootCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file for the scripted backend")
	rootCmd.Flags().StringVar(&graphFile, "graph", "", "graph payload file to mount and live-reload")
	rootCmd.Flags().StringVar(&sessionID, "session", "", "resume a stored session by id")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func dbPath(cfg config.Config) string {
	if cfg.DBPath != "" {
		return cfg.DBPath
	}
	dir, err := config.ConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "graphchat.db")
}

// buildBackend picks the chat backend: an explicit scenario, the Gemini
// API, or the built-in demo scenario as a last resort.
func buildBackend(ctx context.Context, cfg config.Config) (client.Client, error) {
	path := scenarioPath
	if path == "" {
		path = cfg.ScenarioPath
	}
	if path != "" {
		scenario, err := client.LoadScenario(path)
		if err != nil {
			return nil, err
		}
		return client.NewScriptedClient(scenario), nil
	}

	key := apiKey
	if key == "" {
		key = cfg.APIKey
	}
	if key != "" {
		model := modelName
		if model == "" {
			model = cfg.Model
		}
		return client.NewGeminiClient(ctx, key, model)
	}

	color.New(color.FgYellow).Fprintln(os.Stderr,
		"no API key configured; using the built-in demo scenario (ask for a graph)")
	return client.NewScriptedClient(client.DemoScenario()), nil
}

func runInteractive() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		color.New(color.FgYellow).Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
	}

	logDir := "."
	if dir, err := config.ConfigDir(); err == nil {
		logDir = filepath.Join(dir, "logs")
	}
	logger, err := logging.NewFileLogger(logDir, verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}

	var sessions *store.SessionStore
	if s, err := store.NewSessionStore(dbPath(cfg)); err != nil {
		logger.Warn("session store unavailable", zap.Error(err))
	} else {
		sessions = s
		defer sessions.Close()
	}

	theme := ui.DetectTheme()
	switch cfg.Theme {
	case "dark":
		theme = ui.DarkTheme()
	case "light":
		theme = ui.LightTheme()
	}

	model := chat.New(chat.Config{
		Client:    backend,
		Store:     sessions,
		SessionID: sessionID,
		Styles:    ui.NewStyles(theme),
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())

	if graphFile != "" {
		watcher, err := watch.NewPayloadWatcher(graphFile, logger)
		if err != nil {
			return fmt.Errorf("watching %s: %w", graphFile, err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watching %s: %w", graphFile, err)
		}
		defer watcher.Stop()

		go func() {
			// Mount the current contents up front, then follow changes.
			if data, err := os.ReadFile(graphFile); err == nil {
				p.Send(chat.GraphPayloadMsg{Data: data})
			}
			for {
				select {
				case <-ctx.Done():
					return
				case data, ok := <-watcher.Payloads():
					if !ok {
						return
					}
					p.Send(chat.GraphPayloadMsg{Data: data})
				}
			}
		}()
	}

	logger.Info("starting interactive chat", zap.String("version", version))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
