package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"github.com/rfonseca/qjob"
	"github.com/rfonseca/qjob/internal/file"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli/v2"
)

var submitCommand = &cli.Command{
	Name:      "submit",
	Usage:     "Submit compiled kernel files as one job",
	ArgsUsage: "FILE [FILE...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagBackend,
			Aliases: []string{"b"},
			Usage:   "Submit to the specified backend",
		},
		&cli.StringFlag{
			Name:  flagBaseURL,
			Usage: "Override the backend's default endpoint URL",
		},
		&cli.StringFlag{
			Name:  flagAPIKey,
			Usage: "Override the backend's default static API key",
		},
		&cli.StringFlag{
			Name:  flagFormat,
			Usage: "Format tag describing the kernel files' encoding",
			Value: "openqasm2",
		},
		&cli.StringFlag{
			Name: flagRemoteConfig,
			Usage: "Attach the remote-execution configuration read from " +
				"this YAML file",
		},
		&cli.StringFlag{
			Name:  flagNoiseModel,
			Usage: "Attach the noise model read from this YAML file",
		},
		&cli.BoolFlag{
			Name:    flagDetach,
			Aliases: []string{"d"},
			Usage: "Do not wait for the job to complete; write a job " +
				"handle to a file instead",
		},
		&cli.StringFlag{
			Name:    flagFile,
			Aliases: []string{"f"},
			Usage: "With --detach, write the job handle to this file " +
				"(default: a generated name)",
		},
		&cli.BoolFlag{
			Name:    flagYes,
			Aliases: []string{"y"},
			Usage:   "Overwrite an existing job handle file without asking",
		},
		&cli.StringFlag{
			Name:    flagOutput,
			Aliases: []string{"o"},
			Usage:   "Output results in the specified format: table, json, or yaml",
			Value:   "table",
		},
	},
	Action: submit,
}

func submit(c *cli.Context) error {
	if c.Args().Len() == 0 {
		return errors.New("at least one kernel file is required")
	}

	format := c.String(flagFormat)
	executions := make([]qjob.KernelExecution, 0, c.Args().Len())
	for _, filename := range c.Args().Slice() {
		codeBytes, err := ioutil.ReadFile(filename)
		if err != nil {
			return errors.Wrapf(err, "error reading kernel file %s", filename)
		}
		executions = append(
			executions,
			qjob.KernelExecution{
				Name:   filepath.Base(filename),
				Format: format,
				Code:   string(codeBytes),
			},
		)
	}

	savedConfig, err := getConfig()
	if err != nil {
		return err
	}
	opts, err := getBackendConfig(c, savedConfig)
	if err != nil {
		return err
	}
	driver, err := getRegistry(c).Get(getBackendName(c, savedConfig))
	if err != nil {
		return err
	}
	if err := driver.Initialize(c.Context, opts); err != nil {
		return err
	}

	orchestrator := qjob.NewOrchestrator(c.Bool(flagInsecure))
	handle, err := orchestrator.Submit(c.Context, driver, executions)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted job %q.\n\n", handle.JobID)

	if c.Bool(flagDetach) {
		return saveHandle(c, handle)
	}

	result, err := orchestrator.AwaitCompletion(c.Context, driver, handle)
	if err != nil {
		return err
	}
	return printResults(result, c.String(flagOutput))
}

func saveHandle(c *cli.Context, handle *qjob.JobHandle) error {
	filename := c.String(flagFile)
	if filename == "" {
		filename = fmt.Sprintf("%s.json", uuid.NewV4().String())
	}
	if file.Exists(filename) && !c.Bool(flagYes) {
		var overwrite bool
		if err := survey.AskOne(
			&survey.Confirm{
				Message: fmt.Sprintf("%s already exists. Overwrite?", filename),
			},
			&overwrite,
		); err != nil {
			return errors.Wrap(err, "error confirming overwrite")
		}
		if !overwrite {
			return errors.Errorf("declined to overwrite %s", filename)
		}
	}
	handleBytes, err := handle.Serialize()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(filename, handleBytes, 0644); err != nil {
		return errors.Wrapf(err, "error writing job handle to %s", filename)
	}
	fmt.Printf(
		"Wrote job handle to %s. Use `qjob await %s` to collect results.\n",
		filename,
		filename,
	)
	return nil
}
