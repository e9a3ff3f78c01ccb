package main

import (
	"embed"
	"io/fs"
	"log"

	"tts2sv-shell/internal/bootstrap"
	"tts2sv-shell/internal/config"
)

//go:embed all:frontend
var appAssets embed.FS

func main() {
	log.SetFlags(0)
	log.SetPrefix("tts2sv-shell: ")

	cfg, path, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if path != "" {
		log.Printf("using config %s", path)
	}

	assets, err := fs.Sub(appAssets, "frontend")
	if err != nil {
		log.Fatalf("frontend assets: %v", err)
	}

	app, err := bootstrap.NewWithAssets(*cfg, assets)
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
