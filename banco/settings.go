package main

import (
	_ "embed"

	"github.com/taldoflemis/usersnack/crosta"
)

//go:embed base.yaml
var baseConfig []byte

type SessionSettings struct {
	TTLInSeconds             int `mapstructure:"ttl-in-seconds" validate:"required,min=60"`
	JanitorIntervalInSeconds int `mapstructure:"janitor-interval-in-seconds" validate:"required,min=1"`
}

type Settings struct {
	App           crosta.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          crosta.HTTPSettings          `mapstructure:"http" validate:"required"`
	Upstream      crosta.UpstreamSettings      `mapstructure:"upstream" validate:"required"`
	Session       SessionSettings              `mapstructure:"session" validate:"required"`
	Nats          crosta.NatsSettings          `mapstructure:"nats"`
	OpenTelemetry crosta.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return crosta.LoadConfig[Settings]("BANCO", baseConfig)
}
