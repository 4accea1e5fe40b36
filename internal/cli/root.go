// Package cli wires the eclipse commands together.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/ai"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/auth"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/chat"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/config"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/session"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store/memory"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/store/postgres"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tokenstore"
	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/tui"
)

// Options holds the process-level dependencies of the command tree.
type Options struct {
	Version    string
	ConfigPath string
	In         io.Reader
	Out        io.Writer
	Err        io.Writer

	// Interactive reports whether prompts and full-screen views may be used.
	Interactive   func() bool
	NewLineReader func() LineReader
	OpenBrowser   func(url string) error
	OpenStore     func(ctx context.Context, cfg config.Config) (store.Store, error)
	NewGenerator  func(cfg config.AIConfig, log *zap.SugaredLogger) (chat.Generator, error)
	// FlowOptions are appended to the device flow options built from configuration.
	FlowOptions []auth.Option
	Now         func() time.Time
}

// DefaultOptions returns the options used by the eclipse binary.
func DefaultOptions() Options {
	return Options{
		Version:       "dev",
		ConfigPath:    config.DefaultConfigPath(),
		In:            os.Stdin,
		Out:           os.Stdout,
		Err:           os.Stderr,
		Interactive:   stdioIsTerminal,
		NewLineReader: newLinerReader,
		OpenBrowser:   openBrowser,
		OpenStore:     openStore,
		NewGenerator:  newGenerator,
		Now:           time.Now,
	}
}

type runtimeState struct {
	opts       Options
	configPath string
	verbose    bool
	cfg        config.Config
	log        *zap.SugaredLogger
	store      store.Store
}

// NewRootCommand builds the eclipse command tree.
func NewRootCommand(opts Options) *cobra.Command {
	opts = withDefaults(opts)
	rt := &runtimeState{opts: opts, configPath: opts.ConfigPath, log: zap.NewNop().Sugar()}

	root := &cobra.Command{
		Use:           "eclipse",
		Short:         "A CLI based AI tool",
		Long:          tui.Banner() + "\n\nAuthenticate with the device flow, then chat with the AI from your terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			log, err := newLogger(rt.verbose, opts.Err)
			if err != nil {
				return err
			}
			rt.log = log
			if cmd.Name() == "version" || (cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config") {
				return nil
			}
			cfg, err := config.LoadFrom(rt.configPath)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log.Debugw("configuration loaded", "path", rt.configPath, "server_url", cfg.Auth.ServerURL, "token_storage", cfg.Auth.TokenStorage)
			return nil
		},
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable diagnostic logging on stderr")

	root.AddCommand(
		newLoginCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newStatusCommand(rt),
		newWakeupCommand(rt),
		newChatCommand(rt),
		newConfigCommand(rt),
		newVersionCommand(rt),
	)
	return root
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Version == "" {
		opts.Version = def.Version
	}
	if opts.In == nil {
		opts.In = def.In
	}
	if opts.Out == nil {
		opts.Out = def.Out
	}
	if opts.Err == nil {
		opts.Err = def.Err
	}
	if opts.Interactive == nil {
		opts.Interactive = def.Interactive
	}
	if opts.NewLineReader == nil {
		opts.NewLineReader = def.NewLineReader
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = def.OpenBrowser
	}
	if opts.OpenStore == nil {
		opts.OpenStore = def.OpenStore
	}
	if opts.NewGenerator == nil {
		opts.NewGenerator = def.NewGenerator
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return opts
}

func newLogger(verbose bool, w io.Writer) (*zap.SugaredLogger, error) {
	if !verbose {
		return zap.NewNop().Sugar(), nil
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core).Sugar(), nil
}

func (rt *runtimeState) out() io.Writer { return rt.opts.Out }

func (rt *runtimeState) errOut() io.Writer { return rt.opts.Err }

func (rt *runtimeState) guard() (*session.Guard, tokenstore.Store, error) {
	ts, err := tokenstore.Open(rt.cfg.Auth)
	if err != nil {
		return nil, nil, err
	}
	return session.NewGuard(ts, session.WithNow(rt.opts.Now)), ts, nil
}

// openStore opens the persistence backend once per invocation.
func (rt *runtimeState) openStore(ctx context.Context) (store.Store, error) {
	if rt.store != nil {
		return rt.store, nil
	}
	s, err := rt.opts.OpenStore(ctx, rt.cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	rt.store = s
	return s, nil
}

// run wraps a command body so that resources opened during it are released even when it fails.
func (rt *runtimeState) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer rt.close()
		return fn(cmd, args)
	}
}

func (rt *runtimeState) close() {
	if rt.store != nil {
		rt.store.Close()
		rt.store = nil
	}
	_ = rt.log.Sync()
}

func stdioIsTerminal() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stderr.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.Database.URL == "" {
		return memory.NewStore(), nil
	}
	return postgres.NewStore(ctx, cfg.Database.URL)
}

func newGenerator(cfg config.AIConfig, log *zap.SugaredLogger) (chat.Generator, error) {
	return ai.NewClient(cfg, ai.WithLogger(log))
}
