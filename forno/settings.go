package main

import (
	_ "embed"

	"github.com/taldoflemis/usersnack/crosta"
)

//go:embed base.yaml
var baseConfig []byte

type Settings struct {
	App           crosta.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          crosta.HTTPSettings          `mapstructure:"http" validate:"required"`
	OpenTelemetry crosta.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return crosta.LoadConfig[Settings]("FORNO", baseConfig)
}
