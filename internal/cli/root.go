// Package cli is the shoplist command line: a cobra command tree over the
// list manager, plus the interactive list started by `shoplist ui`.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/config"
	"github.com/idilsaglam/shoplist/internal/logging"
	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/store/jsonstore"
	"github.com/idilsaglam/shoplist/internal/store/memstore"
	"github.com/idilsaglam/shoplist/internal/store/sqlitestore"
	"github.com/idilsaglam/shoplist/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks a mistake in how the command was called.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// app carries what every subcommand needs once the root has set it up.
type app struct {
	cfgPath   string
	verbose   bool
	ephemeral bool
	noColor   bool

	cfg *config.Config
	log *zap.Logger
	gw  store.Gateway
	mgr *shoplist.Manager

	// openGateway and the writers are swapped by tests.
	openGateway func(ctx context.Context, cfg *config.Config) (store.Gateway, error)
	out, errOut io.Writer
}

func newApp() *app {
	return &app{log: zap.NewNop(), openGateway: openGateway}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "shoplist",
		Short: "shoplist - plan what to buy, then shop by aisle",
		Long: `shoplist keeps a shopping list on this machine.

In planning mode every item is listed by category and the checkbox means
"needed". In shopping mode only wanted items are listed, ordered by the
aisle of the selected store, and the checkbox means "in the cart".

Run without a subcommand to open the interactive list.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default ~/.shoplist/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep the list in memory only")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable ANSI colors")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	root.AddCommand(
		newUICmd(a),
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newToggleCmd(a),
		newClearCmd(a),
		newModeCmd(a),
		newStoreCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newIndexCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) configPath() string {
	if a.cfgPath != "" {
		return a.cfgPath
	}
	return config.DefaultPath()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.ephemeral {
		cfg.Storage.Driver = config.DriverMemory
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)
	if a.noColor {
		ui.SetColorForcing(false, true)
	}
	if cfg.Logging.File == "" && interactive(cmd) {
		// The list owns the terminal; keep log lines off it.
		if dir, err := config.Dir(); err == nil {
			cfg.Logging.File = filepath.Join(dir, "shoplist.log")
		}
	}

	log, err := logging.New(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}
	a.log = log

	ctx := cmd.Context()
	gw, err := a.openGateway(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	a.gw = gw
	mgr, err := shoplist.Open(ctx, gw, shoplist.WithLogger(log.Named("shoplist")))
	if err != nil {
		return err
	}
	a.mgr = mgr
	a.log.Debug("ready", zap.String("driver", cfg.Storage.Driver), zap.String("path", cfg.Storage.Path))
	return nil
}

func interactive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "ui"
}

func (a *app) teardown() {
	if a.gw != nil {
		if err := a.gw.Close(); err != nil {
			a.log.Warn("close store", zap.Error(err))
		}
		a.gw = nil
	}
	_ = a.log.Sync()
}

func openGateway(ctx context.Context, cfg *config.Config) (store.Gateway, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memstore.New(), nil
	case config.DriverJSON:
		return jsonstore.Open(cfg.Storage.Path)
	case config.DriverSQLite:
		return sqlitestore.Open(ctx, cfg.Storage.Path)
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Storage.Driver)
}

// Execute runs the command line and returns the process exit code
// (0 ok, 1 error, 2 usage).
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, newApp(), args)
}

func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	if a.out != nil {
		root.SetOut(a.out)
	}
	if a.errOut != nil {
		root.SetErr(a.errOut)
	}
	err := root.ExecuteContext(ctx)
	a.teardown()
	if err == nil {
		return ExitOK
	}
	ui.Fail(err.Error())
	if isUsage(err) {
		ui.Hint("Run `shoplist --help` for usage.")
		return ExitUsage
	}
	return ExitError
}

func isUsage(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	// cobra reports these as plain errors.
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "accepts ") ||
		strings.HasPrefix(msg, "requires at least") ||
		strings.HasPrefix(msg, "invalid argument")
}
