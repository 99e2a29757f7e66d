package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/charlabot/charla/cmd/charla/telegramcmd"
	"github.com/charlabot/charla/internal/logutil"
	"github.com/charlabot/charla/weather"
)

func newTelegramCommand() *cobra.Command {
	return telegramcmd.NewCommand(telegramcmd.Dependencies{
		LoggerFromViper: logutil.LoggerFromViper,
		HandlerFromViper: func(logger *slog.Logger) (telegramcmd.Handler, error) {
			return orchestratorFromViper(logger)
		},
		WeatherFromViper: func() *weather.Client {
			return weatherFromViper()
		},
	})
}
