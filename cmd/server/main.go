package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"chat-server/internal/auth"
	"chat-server/internal/config"
	"chat-server/internal/presence"
	"chat-server/internal/store"
	"chat-server/internal/ws"

	"github.com/joho/godotenv"
)

func main() {
	// Local development overrides; absence is fine in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	db, err := store.Open(cfg.BadgerFilepath, log)
	if err != nil {
		log.Error("opening store failed", "path", cfg.BadgerFilepath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	registry := presence.NewRegistry()

	hub := ws.NewHub(registry, log)
	go hub.Run()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AuthTokenDuration)
	resolver := auth.NewTokenResolver(tokens, db)
	dispatcher := ws.NewDispatcher(db, registry, hub, log)
	server := ws.NewServer(hub, dispatcher, resolver, cfg.FrontendURL, cfg.SendBufferSize)

	http.HandleFunc("/ws", server.ServeWS)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("chat server starting", "addr", addr, "origin", cfg.FrontendURL)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
