package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"pfda_functional/application/flow"
	"pfda_functional/application/pages"
	"pfda_functional/domain/interfaces"
	"pfda_functional/infrastructure/browser"
	"pfda_functional/infrastructure/config"
	"pfda_functional/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrNotActivated is returned by the featured command when the featured tab is not the active one
var ErrNotActivated = errors.New("featured apps link is not activated")

// BrowserFactory opens the browser a command runs against
type BrowserFactory func(cfg config.Config, logger logrus.FieldLogger) (interfaces.Browser, error)

type TerminalInterface struct {
	cfg         config.Config
	logger      *logrus.Logger
	openBrowser BrowserFactory
	root        *cobra.Command
}

func NewTerminalInterface() (*TerminalInterface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newTerminalInterface(cfg, OpenBrowser), nil
}

func newTerminalInterface(cfg config.Config, openBrowser BrowserFactory) *TerminalInterface {
	t := &TerminalInterface{
		cfg:         cfg,
		logger:      cfg.NewLogger(),
		openBrowser: openBrowser,
	}
	t.root = t.newRootCommand()
	return t
}

// OpenBrowser starts the browser selected by cfg.Driver
func OpenBrowser(cfg config.Config, logger logrus.FieldLogger) (interfaces.Browser, error) {
	switch cfg.Driver {
	case config.DriverSelenium:
		session, err := browser.NewSeleniumSession(logger, browser.SeleniumOptions{
			DriverPath:   cfg.DriverPath,
			ChromeBinary: cfg.ChromeBinaryPath,
			Port:         cfg.SeleniumPort,
			Headless:     cfg.Headless,
			PollInterval: cfg.PollInterval,
		})
		if err != nil {
			return nil, err
		}
		return session, nil
	case config.DriverPlaywright:
		session, err := browser.NewPlaywrightSession(logger, browser.PlaywrightOptions{
			Headless:         cfg.Headless,
			PollInterval:     cfg.PollInterval,
			StorageStatePath: cfg.StorageStatePath,
		})
		if err != nil {
			return nil, err
		}
		return session, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func (t *TerminalInterface) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return t.root.ExecuteContext(ctx)
}

func (t *TerminalInterface) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pfda-functional",
		Short:         "precisionFDA functional page checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&t.cfg.ReportPath, "report", t.cfg.ReportPath, "path of the JSON report history")
	root.PersistentFlags().StringVar(&t.cfg.LogLevel, "log-level", t.cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := t.cfg.Validate(); err != nil {
			return err
		}
		level, _ := logrus.ParseLevel(t.cfg.LogLevel)
		t.logger.SetLevel(level)
		return nil
	}

	root.AddCommand(t.newFeaturedCommand(), t.newHistoryCommand())
	return root
}

func (t *TerminalInterface) newFeaturedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "featured",
		Short: "Open the featured apps page and check that its tab is activated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.runFeatured(cmd.Context(), cmd.OutOrStdout())
		},
	}
	addBrowserFlags(cmd.Flags(), &t.cfg)
	return cmd
}

func addBrowserFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "precisionFDA site root")
	flags.StringVar(&cfg.Driver, "driver", cfg.Driver, "browser driver (playwright or selenium)")
	flags.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run the browser without a window")
	flags.DurationVar(&cfg.PageReadyTimeout, "timeout", cfg.PageReadyTimeout, "page readiness timeout")
}

func (t *TerminalInterface) runFeatured(ctx context.Context, out io.Writer) error {
	store, err := storage.NewReportStore(t.cfg.ReportPath)
	if err != nil {
		return err
	}

	b, err := t.openBrowser(t.cfg, t.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			t.logger.WithError(err).Warn("Failed to close browser")
		}
	}()

	runner := flow.NewRunner(b, store, t.logger, t.cfg.URL, pages.WithTimeout(t.cfg.PageReadyTimeout))
	result, err := runner.CheckFeaturedApps(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\t%s\tactivated=%t\t%s\n", result.ID, result.URL, result.Activated, result.Duration.Round(time.Millisecond))
	if !result.Activated {
		return ErrNotActivated
	}
	return nil
}

func (t *TerminalInterface) newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print stored check results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewReportStore(t.cfg.ReportPath)
			if err != nil {
				return err
			}
			history, err := store.Load()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tPAGE\tACTIVATED\tERROR")
			for _, r := range history {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", r.StartedAt.Format(time.RFC3339), r.Page, r.Activated, r.Error)
			}
			return w.Flush()
		},
	}
}
