package main

import (
	"flag"
	"fmt"
	"os"

	"attestd/internal/config"
	"attestd/internal/infra/db"
	httpserver "attestd/internal/infra/http"

	"gorm.io/gorm"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.FromEnv()

	var conn *gorm.DB
	if cfg.PostgresDSN != "" {
		var err error
		conn, err = db.Open(cfg.PostgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return 1
		}
	}

	if err := httpserver.NewServer(cfg, conn).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	return 0
}
