// Command templates writes the pricing templates for every order type.
package main

import (
	"flag"
	"log/slog"
	"os"

	"tender-backend/internal/pricing"
)

func main() {
	dir := flag.String("dir", "./templates", "output directory")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := pricing.WriteTemplates(*dir); err != nil {
		log.Error("failed to write templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, layout := range pricing.Layouts() {
		log.Info("template written", slog.String("type", string(layout.Type)), slog.String("file", layout.File))
	}
}
