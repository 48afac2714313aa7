package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/config"
	"github.com/iliyamo/go-blog/internal/database"
	"github.com/iliyamo/go-blog/internal/handler"
	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/router"
	"github.com/iliyamo/go-blog/internal/service"
	"github.com/iliyamo/go-blog/internal/session"
	"github.com/iliyamo/go-blog/internal/storage"
	"github.com/iliyamo/go-blog/internal/view"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema setup failed: %v", err)
	}
	cancel()

	// Sessions live in Redis so they survive restarts. When Redis is
	// unreachable we degrade to an in-process store and keep serving;
	// every open session is then lost on the next restart.
	var sessions session.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		log.Println("redis unavailable, falling back to in-memory sessions")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	uploads, err := storage.NewUploader(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir setup failed: %v", err)
	}

	renderer, err := view.New()
	if err != nil {
		log.Fatalf("template parse failed: %v", err)
	}

	// Repositories and services.
	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)
	likes := repository.NewLikeRepo(db)
	profiles := repository.NewProfileRepo(db, users)
	creds := service.NewCredentialService(users, cfg.BcryptCost)

	// Ownership guard: one guard, per-resource owner loaders. A post
	// has a single owner; a comment may be deleted by its author or by
	// the parent post's author, so its loader returns both ids.
	guard := middleware.NewOwnershipGuard()
	guard.Register(middleware.KindPost, func(ctx context.Context, id uint64) ([]uint64, error) {
		ownerID, hasOwner, err := posts.OwnerID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !hasOwner {
			return nil, nil // legacy ownerless post: nobody may mutate it
		}
		return []uint64{ownerID}, nil
	})
	guard.Register(middleware.KindComment, func(ctx context.Context, id uint64) ([]uint64, error) {
		own, err := comments.Owners(ctx, id)
		if err != nil {
			return nil, err
		}
		allowed := []uint64{own.AuthorID}
		if own.PostHasAuthor {
			allowed = append(allowed, own.PostAuthorID)
		}
		return allowed, nil
	})

	e := echo.New()
	e.Renderer = renderer
	router.RegisterRoutes(e, router.Deps{
		Cfg:      cfg,
		Sessions: sessions,
		Guard:    guard,
		Auth:     handler.NewAuthHandler(cfg, creds, sessions),
		Posts:    handler.NewPostHandler(posts, uploads, sessions),
		Comments: handler.NewCommentHandler(comments, sessions),
		Likes:    handler.NewLikeHandler(likes, sessions),
		Profiles: handler.NewProfileHandler(profiles, users, uploads, sessions),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
