package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"readingquiz"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	cfg, err := readingquiz.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	readingquiz.SetVerbose(*verbose || cfg.Log.Verbose)

	maker, err := readingquiz.NewQuestionMaker(cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to create question maker: %v (set OPENAI_API_KEY)", err)
	}

	generator := readingquiz.NewQuizGenerator(maker, cfg.OpenAI.MaxAttempts)
	generator.SetLogDir(cfg.Log.Dir)

	var db *readingquiz.DB
	if cfg.Storage.DBPath != "" {
		db, err = readingquiz.OpenDB(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.CloseDB()

		if err := db.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		generator.SetRecorder(db)
	}

	if cfg.Server.SessionSecret == "" {
		log.Printf("No session secret configured, sessions will not survive a restart")
	}
	server := NewServer(cfg, generator, newSessionStore(cfg.Server), db)
	server.refill(context.Background())

	log.Printf("Starting server on port %s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, server.Routes()))
}
