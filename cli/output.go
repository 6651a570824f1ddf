package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/rfonseca/qjob"
)

func printResults(result *qjob.ResultSet, output string) error {
	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("EXECUTION", "BITSTRING", "COUNT")
		for _, execution := range result.Executions {
			bitstrings := make([]string, 0, len(execution.Samples))
			for bitstring := range execution.Samples {
				bitstrings = append(bitstrings, bitstring)
			}
			sort.Strings(bitstrings)
			for _, bitstring := range bitstrings {
				table.AddRow(
					execution.Label,
					bitstring,
					execution.Samples[bitstring],
				)
			}
		}
		fmt.Println(table)

	case "json":
		prettyJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "error formatting results")
		}
		fmt.Println(string(prettyJSON))

	case "yaml":
		yamlBytes, err := yaml.Marshal(result)
		if err != nil {
			return errors.Wrap(err, "error formatting results")
		}
		fmt.Println(string(yamlBytes))

	default:
		return errors.Errorf("unknown output format %q", output)
	}
	return nil
}
