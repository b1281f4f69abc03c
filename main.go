package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/config"
	"github.com/DerekCuevas/derekcuevas.github.io-sub004/internal/manifest"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	verbose        bool
	envFile        string
	provider       string
	model          string
	mock           bool
	mockFixture    string
	resumePath     string
	manifestPath   string
	postsDir       string
	completionsDir string
	historyWindow  int
	timeout        time.Duration

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "autoblog",
	Short: "Generate and publish a blog post from your resume",
	Long: `autoblog asks a chat model for a new technical blog post grounded in your
resume, avoiding topics you already wrote about, and publishes it into a
static site's content directory.

Every run appends exactly one entry to the manifest (the publication history)
and writes exactly one markdown file, or changes nothing at all.

Run without a subcommand to generate one post.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = buildLogger(cfg.Verbose, "stderr")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the autoblog version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "autoblog", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&envFile, "env-file", ".env", "Dotenv file to load before reading the environment")
	pf.StringVar(&provider, "provider", "", "Model provider: openai or ollama (or set AUTOBLOG_PROVIDER)")
	pf.StringVarP(&model, "model", "m", "", "Model name (default depends on provider)")
	pf.BoolVar(&mock, "mock", false, "Use the deterministic mock client (or set AUTOBLOG_MOCK=true)")
	pf.StringVar(&mockFixture, "mock-fixture", "", "Completion text file served by the mock client")
	pf.StringVar(&resumePath, "resume", "", "Resume file (default resume.md)")
	pf.StringVar(&manifestPath, "manifest", "", "Manifest file (default manifest.json)")
	pf.StringVar(&postsDir, "posts-dir", "", "Directory for published markdown posts (default content/posts)")
	pf.StringVar(&completionsDir, "completions-dir", "", "Directory for raw completion archives (default completions)")
	pf.IntVar(&historyWindow, "history-window", 0, "Previous titles shown to the model (default 20)")
	pf.DurationVar(&timeout, "timeout", 0, "Chat request timeout (default 2m)")

	registerGenerateFlags(rootCmd)
	registerGenerateFlags(generateCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show only the newest N posts")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig layers flags the user actually set over the .env/environment config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(envFile)
	if err != nil {
		return c, err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		c.Verbose = verbose
	}
	if flags.Changed("provider") {
		c.Provider = config.ProviderType(provider)
	}
	if flags.Changed("model") {
		c.Model = model
	}
	if flags.Changed("mock") {
		c.Mock = mock
	}
	if flags.Changed("mock-fixture") {
		c.MockFixture = mockFixture
	}
	if flags.Changed("resume") {
		c.ResumePath = resumePath
	}
	if flags.Changed("manifest") {
		c.ManifestPath = manifestPath
	}
	if flags.Changed("posts-dir") {
		c.PostsDir = postsDir
	}
	if flags.Changed("completions-dir") {
		c.CompletionsDir = completionsDir
	}
	if flags.Changed("history-window") {
		c.HistoryWindow = historyWindow
	}
	if flags.Changed("timeout") {
		c.Timeout = timeout
	}
	return c, nil
}

// buildLogger builds the production zap logger writing to output
// ("stderr" or a file path).
func buildLogger(debug bool, output string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if output != "stderr" {
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return nil, err
		}
	}
	return zc.Build()
}

func newStore() *manifest.Store {
	return newStoreWith(logger)
}

func newStoreWith(log *zap.Logger) *manifest.Store {
	return manifest.NewStore(cfg.ManifestPath, cfg.PostsDir, manifest.WithLogger(log))
}
