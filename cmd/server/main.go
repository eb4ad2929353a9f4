package main

import (
	"log"

	"github.com/AmbitionsXXXV/doc-editor/internal/app"
	"github.com/AmbitionsXXXV/doc-editor/internal/config"
	"github.com/AmbitionsXXXV/doc-editor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.InitLogger(cfg.Env); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := app.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
