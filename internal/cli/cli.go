// Package cli implements the phishguard command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/config"
	"github.com/raysh454/phishguard/internal/extract"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
	"github.com/raysh454/phishguard/internal/server"
)

// Version is reported by --version.
var Version = "0.1.0"

// app carries state shared by the subcommands once the root pre-run has loaded configuration.
type app struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	logger logging.Logger
}

// NewRootCommand builds the command tree. It reads nothing from the process
// until executed, so tests can drive it with SetArgs/SetOut/SetIn.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "phishguard",
		Short: "Heuristic phishing URL risk evaluator",
		Long: `phishguard classifies URLs as likely-safe or likely-phishing using
heuristic checks: URL shorteners, suspicious characters, deep subdomain
chains, IP-literal hosts, typosquatting of well-known domains and more.

Examples:
  phishguard check https://bit.ly/malicious@redirect.exe
  phishguard check --mode basic gooogle.com paypal.com
  phishguard batch --format html message.html
  phishguard serve --addr :8080`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file (default: ./phishguard.yaml if present)")
	pf.StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.newCheckCommand(),
		a.newBatchCommand(),
		a.newRulesCommand(),
		a.newServeCommand(),
	)
	return root
}

// Execute runs the command line against the process arguments and returns
// the exit status.
func Execute() int {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	// stdout carries results; logs go to stderr
	a.logger = logging.NewLogger(cmd.ErrOrStderr(), "phishguard", cfg.LogLevel())
	return nil
}

func (a *app) newAssessor() (*assessor.HeuristicsAssessor, error) {
	return assessor.NewHeuristicsAssessor(a.cfg.AssessorConfig(), a.logger)
}

// ─── check ─────────────────────────────────────────────────────────────

func (a *app) newCheckCommand() *cobra.Command {
	var (
		mode   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "check URL...",
		Short: "Evaluate one or more URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.ParseMode(mode)
			if err != nil {
				return err
			}
			h, err := a.newAssessor()
			if err != nil {
				return err
			}
			defer h.Close()

			items := h.EvaluateBatch(cmd.Context(), args, m)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			r := newRenderer(cmd.OutOrStdout(), a.noColor)
			for _, it := range items {
				r.item(it)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(model.ModeEnhanced), "evaluator: basic or enhanced")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// ─── batch ─────────────────────────────────────────────────────────────

func (a *app) newBatchCommand() *cobra.Command {
	var (
		mode   string
		format string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "batch [FILE|-]",
		Short: "Extract URLs from a file or stdin and evaluate them in order",
		Long: `Reads FILE (or stdin when FILE is "-" or omitted) and evaluates every URL in it.

Formats:
  lines  one URL per line, "#" comments allowed
  text   URLs and bare domains found anywhere in free text (e.g. an email body)
  html   link, form and frame targets plus URLs in the visible text`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.ParseMode(mode)
			if err != nil {
				return err
			}
			f, err := parseBatchFormat(format)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer file.Close()
				in = file
			}
			content, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			urls, err := extract.Extract(string(content), f)
			if err != nil {
				return err
			}

			h, err := a.newAssessor()
			if err != nil {
				return err
			}
			defer h.Close()

			items := h.EvaluateBatch(cmd.Context(), urls, m)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			r := newRenderer(cmd.OutOrStdout(), a.noColor)
			for _, it := range items {
				r.item(it)
			}
			r.summary(items)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(model.ModeEnhanced), "evaluator: basic or enhanced")
	cmd.Flags().StringVarP(&format, "format", "f", string(extract.FormatLines), "input format: lines, text or html")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// parseBatchFormat differs from extract.ParseFormat only in its default.
func parseBatchFormat(s string) (extract.Format, error) {
	if strings.TrimSpace(s) == "" {
		return extract.FormatLines, nil
	}
	return extract.ParseFormat(s)
}

// ─── rules ─────────────────────────────────────────────────────────────

func (a *app) newRulesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the heuristic rules and their weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ac := a.cfg.AssessorConfig()
			rules := assessor.Rules(ac)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rules)
			}
			newRenderer(cmd.OutOrStdout(), a.noColor).rules(rules, ac)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rules as JSON")
	return cmd
}

// ─── serve ─────────────────────────────────────────────────────────────

func (a *app) newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(cmd *cobra.Command) error {
	h, err := a.newAssessor()
	if err != nil {
		return err
	}
	srv, err := server.NewServer(server.Config{
		ListenAddr:  a.cfg.Server.Addr,
		ReadTimeout: a.cfg.Server.ReadTimeout,
		Assessor:    h,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	newRenderer(cmd.OutOrStdout(), a.noColor).banner(a.cfg.Server.Addr)

	hs := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.ListenAndServe()
	}()
	a.logger.Info("listening", logging.Field{Key: "addr", Value: a.cfg.Server.Addr})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down")
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
