package main

import (
	"library_catalog/pkg/client"
	"library_catalog/pkg/config"
	"library_catalog/pkg/console"
	"library_catalog/pkg/database"
	"log"
	"os"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	var c console.Catalog
	if cfg.APIURL != "" {
		log.Printf("Using remote catalog at %s", cfg.APIURL)
		c = client.New(cfg.APIURL, client.Options{
			Timeout:        cfg.ClientTimeout,
			MaxFailures:    cfg.BreakerMaxFailures,
			BreakerTimeout: cfg.BreakerTimeout,
			MaxRetries:     cfg.RetryMax,
			RetryBackoff:   cfg.RetryBackoff,
		})
	} else {
		library, db, err := database.OpenLibrary(cfg)
		if err != nil {
			log.Fatalf("Failed to open catalog: %v", err)
		}
		if db != nil {
			defer database.Close(db)
		}
		c = library
	}

	if err := console.NewMenu(c, os.Stdin, os.Stdout).Run(); err != nil {
		log.Printf("Input error: %v", err)
	}
}
