package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/driftchat/driftchat-backend/avatar"
	"github.com/driftchat/driftchat-backend/chat"
	"github.com/driftchat/driftchat-backend/config"
	"github.com/driftchat/driftchat-backend/handlers"
	"github.com/driftchat/driftchat-backend/render"
	"github.com/driftchat/driftchat-backend/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}

	cfg := config.LoadConfig()
	db := repository.ConnectToPostgreSQL(cfg)
	mongoClient := repository.ConnectMongoDB(cfg)
	store := repository.NewChatStore(db, mongoClient, cfg.MongoDBName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	known, err := store.ListKnownUsers(ctx)
	cancel()
	if err != nil {
		log.Fatal("Error listing known users:", err)
	}

	registry := chat.NewRegistry()
	presence := chat.NewPresence()
	directory := chat.NewDirectory(known)
	renderer, err := render.NewRenderer(store, directory, "/avatars/")
	if err != nil {
		log.Fatal(err)
	}
	avatars := avatar.NewProvider(cfg.AvatarDir, cfg.AvatarService)
	lifecycle := chat.NewLifecycle(registry, presence, directory, store, renderer, avatars)

	h := handlers.New(cfg, db, lifecycle, registry, renderer)
	r := handlers.NewRouter(h)

	log.Println("Server running on", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}
