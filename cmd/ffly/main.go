package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ffly/internal/config"
	"ffly/internal/detail"
	"ffly/internal/firefly"
	"ffly/internal/storage"
	"ffly/internal/update"
)

var (
	verbose    bool
	configPath string
	dbPath     string

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ffly",
	Short: "Terminal client for the Firefly school portal",
	Long: `ffly browses a Firefly instance from the terminal: the task listing with
search and filters, the resource tree, bookmarks, and task actions such as
marking done and commenting.

Run "ffly login <instance-url>" once, paste the credential token, then run
"ffly" to start the interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}

		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		// The interactive UI owns the terminal, so logs go to a file.
		if cfg.LogPath != "" {
			if dir := filepath.Dir(cfg.LogPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create log directory: %w", err)
				}
			}
			zapConfig.OutputPaths = []string{cfg.LogPath}
			zapConfig.ErrorOutputPaths = []string{cfg.LogPath}
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterface(cmd.Context())
	},
}

var loginCmd = &cobra.Command{
	Use:   "login [instance-url]",
	Short: "Register a Firefly instance and fetch a credential token",
	Long: `Stores the instance URL with a fresh device id and opens the instance login
page in the browser. After signing in the portal returns a credential token
as an XML document; save it to a file and pass it with --token-file to
complete the login.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential token",
	RunE:  runLogout,
}

var tokenFile string

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the sqlite database (overrides config)")

	loginCmd.Flags().StringVar(&tokenFile, "token-file", "", "XML credential token saved from the browser")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ffly", "config.yaml")
}

func openRepository() (*storage.SQLiteRepository, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func runInterface(ctx context.Context) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	session, err := repo.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoSession) {
			return errors.New("no instance configured, run: ffly login <instance-url>")
		}
		return err
	}
	if !session.Authenticated() {
		return errors.New("not logged in, run: ffly login " + session.InstanceURL)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second}
	client, err := firefly.New(session, httpClient, logger)
	if err != nil {
		return err
	}

	account := session.Account
	services := update.Services{
		Client:   client,
		Repo:     repo,
		Renderer: detail.NewRenderer(session.InstanceURL, session.DeviceID, account.Secret),
		Log:      logger,
		Config:   cfg,
	}

	program := tea.NewProgram(update.NewModel(services, session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()
	ctx := cmd.Context()

	session, err := repo.LoadSession(ctx)
	if err != nil && !errors.Is(err, storage.ErrNoSession) {
		return err
	}

	if len(args) == 1 {
		instanceURL := strings.TrimRight(strings.TrimSpace(args[0]), "/")
		if !strings.HasPrefix(instanceURL, "http://") && !strings.HasPrefix(instanceURL, "https://") {
			instanceURL = "https://" + instanceURL
		}
		session.InstanceURL = instanceURL
		session.DeviceID = strings.ToUpper(uuid.NewString())
		if err := repo.SaveInstance(ctx, session.InstanceURL, session.DeviceID); err != nil {
			return err
		}
	}
	if session.InstanceURL == "" {
		return errors.New("no instance configured, run: ffly login <instance-url>")
	}

	if tokenFile == "" {
		loginURL := firefly.LoginURL(session.InstanceURL, session.DeviceID)
		fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", loginURL)
		fmt.Fprintln(cmd.OutOrStdout(), "Sign in, save the token XML shown afterwards, then run:")
		fmt.Fprintln(cmd.OutOrStdout(), "  ffly login --token-file <path>")
		if err := browser.OpenURL(loginURL); err != nil {
			logger.Warn("open browser failed", zap.Error(err))
			fmt.Fprintln(cmd.OutOrStdout(), "Could not open the browser, visit the URL above manually.")
		}
		return nil
	}

	file, err := os.Open(tokenFile)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer file.Close()

	account, err := firefly.ParseCredentialToken(file)
	if err != nil {
		return fmt.Errorf("parse credential token: %w", err)
	}
	if err := repo.SaveAccount(ctx, account); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", account.FullName, account.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.ClearAccount(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ffly failed: %v\n", err)
		os.Exit(1)
	}
}
