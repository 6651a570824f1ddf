package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/rfonseca/qjob"
	"github.com/rfonseca/qjob/internal/common/retries"
	"github.com/rfonseca/qjob/meta"
	"github.com/urfave/cli/v2"
)

var awaitCommand = &cli.Command{
	Name:      "await",
	Usage:     "Resume waiting on a previously saved job handle",
	ArgsUsage: "HANDLE_FILE",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  flagBaseURL,
			Usage: "Override the backend's default endpoint URL",
		},
		&cli.StringFlag{
			Name:  flagAPIKey,
			Usage: "Override the backend's default static API key",
		},
		&cli.StringFlag{
			Name:    flagOutput,
			Aliases: []string{"o"},
			Usage:   "Output results in the specified format: table, json, or yaml",
			Value:   "table",
		},
	},
	Action: await,
}

func await(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("exactly one job handle file is required")
	}
	filename := c.Args().Get(0)

	handleBytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "error reading job handle from %s", filename)
	}
	handle, err := qjob.DeserializeJobHandle(handleBytes)
	if err != nil {
		return err
	}

	// A handle that already resolved is a pure read; no driver, no network.
	if handle.Resolved {
		return printResults(handle.Result, c.String(flagOutput))
	}

	savedConfig, err := getConfig()
	if err != nil {
		return err
	}
	opts, err := getBackendConfig(c, savedConfig)
	if err != nil {
		return err
	}
	driver, err := getRegistry(c).Get(handle.Driver)
	if err != nil {
		return err
	}
	// The credential exchange can fail transiently; retrying it is this
	// caller's job, not the client layer's. Missing configuration, on the
	// other hand, will not fix itself.
	if err := retries.ManageRetries(
		c.Context,
		fmt.Sprintf("initialize the %q driver", handle.Driver),
		3,
		10*time.Second,
		func() (bool, error) {
			err := driver.Initialize(c.Context, opts)
			if err == nil {
				return false, nil
			}
			if _, ok := err.(*meta.ErrConfiguration); ok {
				return false, err
			}
			return true, err
		},
	); err != nil {
		return err
	}

	orchestrator := qjob.NewOrchestrator(c.Bool(flagInsecure))
	result, err := orchestrator.AwaitCompletion(c.Context, driver, handle)
	if err != nil {
		return err
	}

	// Persist the resolution so later awaits of the same file never touch
	// the network.
	if handleBytes, err = handle.Serialize(); err == nil {
		if err = ioutil.WriteFile(filename, handleBytes, 0644); err != nil {
			log.Printf(
				"WARNING: error updating job handle at %s: %s",
				filename,
				err,
			)
		}
	}

	return printResults(result, c.String(flagOutput))
}
