package main

import (
	"io/ioutil"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/rfonseca/qjob"
	"github.com/rfonseca/qjob/fermioniq"
	"github.com/urfave/cli/v2"
)

func getRegistry(c *cli.Context) *qjob.DriverRegistry {
	registry := qjob.NewDriverRegistry()
	registry.Register(
		fermioniq.Name,
		func() qjob.Driver {
			return fermioniq.New(c.Bool(flagInsecure))
		},
	)
	return registry
}

func getBackendName(c *cli.Context, savedConfig *config) string {
	if name := c.String(flagBackend); name != "" {
		return name
	}
	if savedConfig.Backend != "" {
		return savedConfig.Backend
	}
	return fermioniq.Name
}

// getBackendConfig assembles explicit driver options from saved connection
// details and command line flags, flags winning. Option blocks referenced by
// file are read as YAML and passed through to the driver as JSON.
func getBackendConfig(
	c *cli.Context,
	savedConfig *config,
) (qjob.BackendConfig, error) {
	opts := qjob.BackendConfig{}
	if savedConfig.BaseURL != "" {
		opts["base_url"] = savedConfig.BaseURL
	}
	if savedConfig.APIKey != "" {
		opts["api_key"] = savedConfig.APIKey
	}
	if baseURL := c.String(flagBaseURL); baseURL != "" {
		opts["base_url"] = baseURL
	}
	if apiKey := c.String(flagAPIKey); apiKey != "" {
		opts["api_key"] = apiKey
	}
	for optionKey, flagName := range map[string]string{
		"remote_config": flagRemoteConfig,
		"noise_model":   flagNoiseModel,
	} {
		filename := c.String(flagName)
		if filename == "" {
			continue
		}
		yamlBytes, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading %s", filename)
		}
		jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing %s", filename)
		}
		opts[optionKey] = string(jsonBytes)
	}
	return opts, nil
}
