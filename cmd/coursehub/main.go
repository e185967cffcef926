// Command coursehub serves the course viewer API and offers terminal access to
// the catalog, session completion and content generation.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yungbote/coursehub/internal/config"
	"github.com/yungbote/coursehub/internal/platform/logger"
	"github.com/yungbote/coursehub/internal/present"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

type rootOptions struct {
	envFile string
	verbose bool
	style   string
	width   int

	cfg *config.Config
	log *logger.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "coursehub",
		Short:         "Course catalog, progress tracking and study aids",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			opts.log.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Load environment variables from this file when it exists")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	root.PersistentFlags().StringVar(&opts.style, "style", "auto", "Terminal style (auto|dark|light|notty|ascii)")
	root.PersistentFlags().IntVar(&opts.width, "width", 80, "Terminal wrap width")

	root.AddCommand(
		newServeCmd(opts),
		newCatalogCmd(opts),
		newCompleteCmd(opts),
		newGenerateCmd(opts),
		newVersionCmd(),
	)
	return root
}

// setup loads .env, then config, then builds the logger. serve always logs;
// other commands stay quiet unless --verbose.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if path := strings.TrimSpace(o.envFile); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	o.cfg = cfg

	if cmd.Name() != "serve" && !o.verbose {
		o.log = logger.Nop()
		return nil
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	o.log = log
	return nil
}

func (o *rootOptions) terminal() (*present.Terminal, error) {
	return present.NewTerminal(o.style, o.width)
}
