package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/tracksync/internal/server"
	"github.com/desertthunder/tracksync/internal/services"
	"github.com/desertthunder/tracksync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the authorization-code flow on a local server and prints the refresh token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	openBrowser := cmd.Bool("open")
	timeout := cmd.Duration("timeout")
	save := cmd.Bool("save")

	if err := r.loadConfig(cmd); err != nil {
		return err
	}
	if err := r.config.ValidateAuth(); err != nil {
		return err
	}

	spotify, err := r.spotifyService()
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, spotify, timeout, openBrowser)
	if err != nil {
		return err
	}
	if token.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	r.writePlainHeader("✓ Authorization successful")
	r.writePlain("\nRefresh token:\n%s\n\n", token.RefreshToken)

	if !save {
		return r.writePlain("Set %s to this value or rerun with --save.\n", shared.EnvSpotifyRefreshToken)
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}
	return r.writePlain("Refresh token saved to %s\n", r.configPath)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, spotify *services.SpotifyService, timeout time.Duration, openBrowser bool) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	logger := shared.WithLogger(r.logger, "component", "auth")
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(logger))

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	listener, err := server.Listen(serverAddr, router, logger)
	if err != nil {
		return nil, err
	}

	oauthConfig := *spotify.OAuthConfig()
	if r.config.Server.Port == 0 {
		oauthConfig.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr())
	}
	logger.Debug("redirect uri", "url", oauthConfig.RedirectURL)

	oauthHandler := server.NewOAuthHandler(&oauthConfig, state, spotify.Client())
	router.Handler(oauthHandler)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := listener.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	loginURL := fmt.Sprintf("http://%s/login", listener.Addr())
	if openBrowser {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := r.openURL(ctx, loginURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlain("⚠ Could not open browser automatically.\n")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", loginURL)
		}
	} else {
		r.writePlain("Open this URL in your browser to authorize:\n%s\n\n", loginURL)
	}

	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-listener.Errors():
		return nil, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Err != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Err)
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// saveTokens stores the refresh token in the runner's config and writes it to the config file.
//
// Only the refresh token is added to the file as it exists on disk; values that came from the
// environment stay in memory.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}
	if token == nil || token.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	r.config.Credentials.Spotify.RefreshToken = token.RefreshToken

	if r.configPath == "" {
		return nil
	}

	onDisk := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if onDisk, err = shared.LoadConfig(r.configPath); err != nil {
			return fmt.Errorf("failed to reload config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config path: %w", err)
	}
	onDisk.Credentials.Spotify.RefreshToken = token.RefreshToken

	if err := shared.SaveConfig(r.configPath, onDisk); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
