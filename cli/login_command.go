package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var loginCommand = &cli.Command{
	Name: "login",
	Usage: "Verify credentials against a backend and save its connection " +
		"details",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagBackend,
			Aliases: []string{"b"},
			Usage:   "Log in to the specified backend",
		},
		&cli.StringFlag{
			Name:  flagBaseURL,
			Usage: "Override the backend's default endpoint URL",
		},
		&cli.StringFlag{
			Name:  flagAPIKey,
			Usage: "Override the backend's default static API key",
		},
	},
	Action: login,
}

func login(c *cli.Context) error {
	savedConfig, err := getConfig()
	if err != nil {
		return err
	}
	backendName := getBackendName(c, savedConfig)
	opts, err := getBackendConfig(c, savedConfig)
	if err != nil {
		return err
	}

	driver, err := getRegistry(c).Get(backendName)
	if err != nil {
		return err
	}
	// Initialization performs the credential exchange, so reaching this
	// point without error proves the environment's credentials are good.
	if err := driver.Initialize(c.Context, opts); err != nil {
		return err
	}

	if err := saveConfig(
		&config{
			Backend: backendName,
			BaseURL: c.String(flagBaseURL),
			APIKey:  c.String(flagAPIKey),
		},
	); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	fmt.Printf("Credentials verified against the %q backend.\n", backendName)
	return nil
}
