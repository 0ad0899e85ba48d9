package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/tracksync/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded example configuration to the path given by --config.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	force := cmd.Bool("force")

	if _, err := os.Stat(configPath); err == nil {
		if !force {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, configPath)
		}
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config path: %w", err)
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Wrote %s\n\n", configPath)
	r.writePlain("Fill in credentials there or set the environment variables:\n")
	for _, key := range []string{
		shared.EnvSpotifyClientID,
		shared.EnvSpotifyClientSecret,
		shared.EnvSpotifyRefreshToken,
		shared.EnvNotionToken,
		shared.EnvNotionDatabaseID,
	} {
		r.writePlain("  %s\n", key)
	}
	return nil
}
