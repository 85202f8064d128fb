package main

import (
	"library_catalog/pkg/catalog"
	"library_catalog/pkg/config"
	"library_catalog/pkg/database"
	"library_catalog/pkg/httpapi"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting library service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	library, db, err := database.OpenLibrary(cfg, catalog.WithLogger(log.Default()))
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	if db != nil {
		defer database.Close(db)
	}

	server := httpapi.New(library)
	if db != nil {
		server.WithHealthCheck(func() error { return database.Ping(db) })
	}

	log.Printf("Library service starting on %s (store: %s)", cfg.HTTPAddr, cfg.Store)
	if err := http.ListenAndServe(cfg.HTTPAddr, server.Handler()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
