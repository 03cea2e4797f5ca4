package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"macsim/assistant"
	"macsim/config"
	"macsim/logging"
	"macsim/metrics"
	"macsim/model"
	"macsim/shell"
	"macsim/store"
	"macsim/tui"
	"macsim/vfs"
	"macsim/wm"
)

var (
	configPath string
	dataDir    string
	backend    string
	logLevel   string
	logFormat  string
	skipBoot   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (default $MACSIM_HOME/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory for saved files and logs")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Storage backend: file, sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or console")
	rootCmd.Flags().BoolVar(&skipBoot, "skip-boot", false, "Start on the desktop instead of the boot screen")
}

var rootCmd = &cobra.Command{
	Use:           "macsim",
	Short:         "A macOS-style desktop in the terminal",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		if env.cfg.Metrics.Addr != "" {
			go func() {
				if err := metrics.Serve(ctx, env.cfg.Metrics.Addr); err != nil {
					logging.Error("metrics server stopped", zap.Error(err))
				}
			}()
		}

		provider, err := assistant.New(env.cfg.Assistant)
		if err != nil {
			logging.Warn("assistant unavailable, answering offline", zap.Error(err))
			provider = assistant.Offline{}
		}

		state := model.StateBooting
		if skipBoot {
			state = model.StateDesktop
		}
		sh := shell.New(env.fs,
			shell.WithWindowManager(wm.New(wm.WithLogger(logging.Named("wm")))),
			shell.WithProvider(provider),
			shell.WithChatTimeout(env.cfg.Assistant.Timeout),
			shell.WithLogger(logging.Named("shell")),
			shell.WithInitialState(state),
		)
		defer sh.Close()

		m := tui.NewModel(sh, env.fs.LoadStatus())
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("run desktop: %w", err)
		}
		return nil
	},
}

// environment is the configured file system every command works on.
type environment struct {
	cfg     *config.Config
	storage store.Storage
	fs      *vfs.Store
}

func (e *environment) close() {
	if err := e.fs.Close(); err != nil {
		logging.Error("final save failed", zap.Error(err))
	}
	if err := e.storage.Close(); err != nil {
		logging.Warn("close storage", zap.Error(err))
	}
	_ = logging.Sync()
}

// setup loads config, applies flag overrides, starts logging and opens the
// file system on the configured backend.
func setup(ctx context.Context) (*environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.SetDataDir(dataDir)
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, OutputPath: cfg.Log.File}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	storage, err := store.Open(ctx, store.Options{
		Backend:       cfg.Storage.Backend,
		Dir:           cfg.DataDir,
		SQLitePath:    cfg.Storage.SQLitePath,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		RedisPrefix:   cfg.Storage.RedisPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}

	policy, err := vfs.ParseDeletePolicy(cfg.FS.DeletePolicy)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	fs, err := vfs.Open(ctx,
		vfs.WithStorage(storage),
		vfs.WithLogger(logging.Named("vfs")),
		vfs.WithDeletePolicy(policy),
		vfs.WithDebounce(cfg.FS.PersistDebounce),
		vfs.WithUndoLimit(cfg.FS.UndoLimit),
	)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	logging.Info("file system ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("data_dir", cfg.DataDir),
		zap.Int("nodes", fs.Len()))
	return &environment{cfg: cfg, storage: storage, fs: fs}, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
