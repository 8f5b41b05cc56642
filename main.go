package main

import (
	"log"

	"github.com/lekhoni/lekhoni/internal/app"
	"github.com/lekhoni/lekhoni/internal/config"
	"github.com/lekhoni/lekhoni/internal/feed"
	"github.com/lekhoni/lekhoni/internal/files"
	"github.com/lekhoni/lekhoni/internal/likes"
	"github.com/lekhoni/lekhoni/internal/posts"
	"github.com/lekhoni/lekhoni/internal/session"
	"github.com/lekhoni/lekhoni/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var persistent storage.Storage
	var users storage.UserStorage
	switch cfg.StorageDriver {
	case "mongo":
		mongoStorage := storage.NewMongoStorage(cfg.MongoURL, cfg.MongoDBName)
		persistent = mongoStorage
		users = mongoStorage
	default:
		memory := storage.NewInMemoryStorage()
		persistent = memory
		users = memory
	}

	documents := persistent
	var refresher *feed.Refresher
	if cfg.RedisURL != "" {
		documents = storage.NewCachedStorage(cfg.RedisURL, persistent)
		refresher = feed.NewRefresher(persistent, feed.NewRedisCache(cfg.RedisURL))
	}

	fileStore, err := files.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	authService := session.NewService(users, cfg.JWTSecret)
	sessions := session.NewCache(authService)
	postService := posts.New(documents, fileStore)
	toggler := likes.NewToggler(documents)

	a := app.New(app.AppConfig{
		Port:         cfg.Port,
		CORSOrigin:   cfg.CORSOrigin,
		CookieName:   cfg.CookieName,
		CookieSecure: cfg.CookieSecure,
	}, postService, authService, sessions, toggler, fileStore, refresher)

	log.Fatal(a.Start())
}
