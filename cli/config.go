package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rfonseca/qjob/internal/file"
)

type config struct {
	Backend string `json:"backend"`
	BaseURL string `json:"baseURL"`
	APIKey  string `json:"apiKey"`
}

func getQjobHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return path.Join(homeDir, ".qjob"), nil
}

// getConfig loads saved connection details. A missing config file is not an
// error; credentials come from the environment either way.
func getConfig() (*config, error) {
	qjobHome, err := getQjobHome()
	if err != nil {
		return nil, err
	}
	qjobConfigFile := path.Join(qjobHome, "config")
	if !file.Exists(qjobConfigFile) {
		return &config{}, nil
	}

	configBytes, err := ioutil.ReadFile(qjobConfigFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading qjob config file at %s",
			qjobConfigFile,
		)
	}

	config := &config{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing qjob config file at %s",
			qjobConfigFile,
		)
	}

	return config, nil
}

func saveConfig(config *config) error {
	qjobHome, err := getQjobHome()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(qjobHome, 0755); err != nil {
		return errors.Wrapf(err, "error creating directory %s", qjobHome)
	}

	configBytes, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error marshaling configuration")
	}

	qjobConfigFile := path.Join(qjobHome, "config")
	if err := ioutil.WriteFile(
		qjobConfigFile,
		configBytes,
		0600,
	); err != nil {
		return errors.Wrapf(
			err,
			"error writing qjob config file at %s",
			qjobConfigFile,
		)
	}

	return nil
}
