package main

const (
	flagAPIKey       = "api-key"
	flagBackend      = "backend"
	flagBaseURL      = "base-url"
	flagDetach       = "detach"
	flagFile         = "file"
	flagFormat       = "format"
	flagInsecure     = "insecure"
	flagNoiseModel   = "noise-model"
	flagOutput       = "output"
	flagRemoteConfig = "remote-config"
	flagYes          = "yes"
)
