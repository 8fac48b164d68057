// medassistd is the MedAssist companion service: voice transcription for
// the client's raw-audio capture path and the drug-information endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/varun-cu-unv/MedAssist/drugdb"
	"github.com/varun-cu-unv/MedAssist/server"
	"github.com/varun-cu-unv/MedAssist/shutdown"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("medassistd %s\n", version)
		return
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := server.NewLogger(cfg.LogLevel, cfg.LogPretty)

	store, err := drugdb.OpenStore(context.Background(), cfg.DBPath)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.DBPath).Msg("open cache store")
		os.Exit(1)
	}
	defer store.Close()

	var stt server.Transcriber
	if cfg.OpenAIAPIKey != "" {
		stt = server.NewWhisperTranscriber(cfg.OpenAIAPIKey)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set; /process-voice is disabled")
	}

	srv := server.New(cfg, logger, stt, store)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen() }()

	sigCh := make(chan os.Signal, 1)
	shutdown.Notify(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server exited")
			os.Exit(1)
		}
	}
}
