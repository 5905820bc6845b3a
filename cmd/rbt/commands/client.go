package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/rbt/internal/constants"
	"github.com/fivetwenty-io/rbt/internal/events"
	"github.com/fivetwenty-io/rbt/internal/logging"
	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/fivetwenty-io/rbt/pkg/rbtclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// credentials are passed to the client when a command needs a logged in
// session and no token or saved session is configured.
type credentials struct {
	username string
	password string
}

// createClient builds a client from the configuration. args may carry the
// server URL as their first element, which takes precedence over the
// configured one. The returned cleanup func closes the event publisher.
func createClient(ctx context.Context, cmd *cobra.Command, args []string, creds *credentials) (*rbtclient.Client, func(), error) {
	config := loadConfig()

	if len(args) > 0 && args[0] != "" {
		config.URL = args[0]
	}

	if config.URL == "" {
		return nil, nil, constants.ErrNoURLConfigured
	}

	clientConfig, err := buildClientConfig(cmd.ErrOrStderr(), config)
	if err != nil {
		return nil, nil, err
	}

	if creds != nil && clientConfig.APIToken == "" && clientConfig.SessionID == "" {
		clientConfig.Username = creds.username
		clientConfig.Password = creds.password

		viper.Set("username", creds.username)
	}

	clientConfig.SessionStore = NewConfigPersister()

	cleanup := func() {}

	if config.NATSURL != "" {
		emitter, err := events.Connect(&events.Config{
			URL:     config.NATSURL,
			Subject: config.NATSSubject,
			Name:    constants.DefaultUserAgent,
		}, clientConfig.Logger)
		if err != nil {
			return nil, nil, err
		}

		clientConfig.RequestInterceptors = append(clientConfig.RequestInterceptors, emitter.RequestInterceptor())
		clientConfig.ResponseInterceptors = append(clientConfig.ResponseInterceptors, emitter.ResponseInterceptor())
		cleanup = func() { _ = emitter.Close() }
	}

	client, err := rbtclient.New(ctx, clientConfig)
	if err != nil {
		cleanup()

		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, cleanup, nil
}

func buildClientConfig(logOut io.Writer, config *Config) (*rbt.Config, error) {
	level := config.LogLevel
	if config.Debug {
		level = "debug"
	}

	logger, err := logging.New(logOut, level, true)
	if err != nil {
		return nil, err
	}

	linkSearch, err := rbt.ParseLinkSearch(config.LinkSearch)
	if err != nil {
		return nil, err
	}

	collision, err := rbt.ParseCollisionPolicy(config.Collision)
	if err != nil {
		return nil, err
	}

	return &rbt.Config{
		BaseURL:      config.URL,
		APIToken:     config.Token,
		SessionID:    config.SessionID,
		ContentTypes: config.ContentTypes,
		LinkSearch:   linkSearch,
		Collision:    collision,
		Timeout:      config.Timeout,
		RetryMax:     config.RetryMax,
		Debug:        config.Debug,
		Logger:       logger,
		Headers:      config.Headers,
	}, nil
}

// promptCredentials asks for whatever part of the credentials is missing.
// The password is read without echo.
func promptCredentials(cmd *cobra.Command, username, password string) (*credentials, error) {
	if username == "" {
		username = viper.GetString("username")
	}

	if username == "" {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Username: ")

		reader := bufio.NewReader(cmd.InOrStdin())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read username: %w", err)
		}

		username = strings.TrimSpace(line)
	}

	if password == "" {
		password = viper.GetString("password")
	}

	if password == "" {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		password = string(bytePassword)
	}

	if username == "" || password == "" {
		return nil, constants.ErrNoCredentials
	}

	return &credentials{username: username, password: password}, nil
}

// parseParams turns key=value pairs into request parameters.
func parseParams(pairs []string) (rbt.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(rbt.Params, len(pairs))

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParameter, pair)
		}

		params[parts[0]] = parts[1]
	}

	return params, nil
}
