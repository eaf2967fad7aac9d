package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/solarly/landing-api/internal/landing"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := landing.Run(context.Background(), Version); err != nil {
		log.Error().Err(err).Msg("landing-api exited with error")
		os.Exit(1)
	}
}
