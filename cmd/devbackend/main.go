// ABOUTME: Development backend entry point
// ABOUTME: Serves both endpoint families on :8787 over a local sqlite file
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/fieldfolio/fieldfolio/backend"
	"github.com/fieldfolio/fieldfolio/config"
)

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	dbPath := flag.String("db", "fieldfolio-dev.db", "sqlite database path")
	anonKey := flag.String("anon-key", "fieldfolio-anon", "anonymous API key")
	account := flag.String("token-for", "", "print a session token for this account id and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	if cfg.AnonKey != "" {
		*anonKey = cfg.AnonKey
	}

	srv, err := backend.New(*dbPath, *anonKey)
	if err != nil {
		log.Fatal("open backend", "err", err)
	}

	if *account != "" {
		token, err := srv.IssueToken(*account)
		if err != nil {
			log.Fatal("issue token", "err", err)
		}
		fmt.Fprintln(os.Stdout, token)
		return
	}

	log.Info("development backend listening", "addr", *addr, "db", *dbPath)
	if err := srv.Run(*addr); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}
