package fermioniq

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/rfonseca/qjob"
)

const (
	defaultURL    = "https://fermioniq-api-fapp-prod.azurewebsites.net"
	defaultAPIKey = "kYq3mPdVhTun4EwZ0rBX9cASgL7fNoJ2iQxHs8UD_albMCOT5g=="

	cfgURLKey          = "base_url"
	cfgAPIKeyKey       = "api_key"
	cfgRemoteConfigKey = "remote_config"
	cfgNoiseModelKey   = "noise_model"
)

const envconfigPrefix = "FERMIONIQ"

// credentials is the long-lived credential pair exchanged for a short-lived
// bearer token. Both halves are required; a missing one is a configuration
// error at initialization time, never a silent default.
type credentials struct {
	AccessTokenID     string `envconfig:"ACCESS_TOKEN_ID" required:"true"`
	AccessTokenSecret string `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
}

func credentialsFromEnvironment() (credentials, error) {
	c := credentials{}
	return c, envconfig.Process(envconfigPrefix, &c)
}

// resolveConfig merges explicit caller options with hardcoded defaults.
// The passthrough blocks (remote_config, noise_model) are carried verbatim
// only when the caller provided them; their absence is a checked state.
func resolveConfig(opts qjob.BackendConfig) qjob.BackendConfig {
	config := qjob.BackendConfig{
		cfgURLKey:    opts.ValueOrDefault(cfgURLKey, defaultURL),
		cfgAPIKeyKey: opts.ValueOrDefault(cfgAPIKeyKey, defaultAPIKey),
	}
	if opts.Exists(cfgRemoteConfigKey) {
		config[cfgRemoteConfigKey] = opts.Value(cfgRemoteConfigKey)
	}
	if opts.Exists(cfgNoiseModelKey) {
		config[cfgNoiseModelKey] = opts.Value(cfgNoiseModelKey)
	}
	return config
}
