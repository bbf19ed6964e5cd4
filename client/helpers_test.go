package client_test

import "github.com/jrsteele09/go-elearn-client/internal/config"

func configFixture() config.APIConfig {
	return config.API{}
}
