//go:build wireinject
// +build wireinject

package main

import (
	"cn-data/internal/app"

	"github.com/google/wire"
)

// InitializeApp builds app.App (Config + Logger) via Wire.
func InitializeApp() (*app.App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideLogger,
		wire.Struct(new(app.App), "Config", "Logger"),
	)
	return nil, nil
}
