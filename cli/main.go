package main

import (
	"fmt"
	"os"

	"github.com/rfonseca/qjob/internal/signals"
	"github.com/rfonseca/qjob/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "qjob"
	app.Usage = "Submit jobs to remote quantum execution services and " +
		"await their results"
	app.Version = fmt.Sprintf(
		"%s -- commit %s",
		version.Version(),
		version.Commit(),
	)
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure backend connections when using TLS",
		},
	}
	app.Commands = []*cli.Command{
		awaitCommand,
		loginCommand,
		submitCommand,
	}
	fmt.Println()
	if err := app.RunContext(signals.Context(), os.Args); err != nil {
		fmt.Printf("\n%s\n\n", err)
		os.Exit(1)
	}
	fmt.Println()
}
