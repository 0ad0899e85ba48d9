package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracksync/internal/services"
	"github.com/desertthunder/tracksync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    *services.SpotifyService
	notion     *services.NotionService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	lookupEnv  func(string) (string, bool)
	openURL    func(context.Context, string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	LookupEnv  func(string) (string, bool) // Defaults to [os.LookupEnv]
	OpenURL    func(context.Context, string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		lookupEnv:  opts.LookupEnv,
		openURL:    opts.OpenURL,
	}
}

// App returns the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:    "tracksync",
		Usage:   "Sync your Spotify top tracks into a Notion database",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, tracksCommand, tuiCommand, authCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig builds the configuration for a command.
//
// Sources are layered in order: defaults (or the injected config), the TOML file if it exists,
// the env file if it exists, then the process environment. The --limit and --time-range flags win over all of them.
func (r *Runner) loadConfig(cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
			}
			r.config = config
			r.logger.Debug("loaded config file", "path", r.configPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
	}

	if err := shared.LoadDotEnv(cmd.String("env-file")); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	r.config.ApplyEnv(r.lookupEnv)

	if cmd.IsSet("limit") {
		r.config.Sync.Limit = cmd.Int("limit")
	}
	if cmd.IsSet("time-range") {
		r.config.Sync.TimeRange = cmd.String("time-range")
	}

	return nil
}

func (r *Runner) topTracksOptions() services.TopTracksOptions {
	return services.TopTracksOptions{
		Limit:     r.config.Sync.Limit,
		TimeRange: r.config.Sync.TimeRange,
	}
}

func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}
	srv, err := services.NewSpotifyService(r.config.Credentials.Spotify, r.httpClient)
	if err != nil {
		return nil, err
	}
	r.spotify = srv
	return srv, nil
}

func (r *Runner) notionService() (*services.NotionService, error) {
	if r.notion != nil {
		return r.notion, nil
	}
	srv, err := services.NewNotionService(r.config.Notion, r.httpClient)
	if err != nil {
		return nil, err
	}
	r.notion = srv
	return srv, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
