package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/perfeicloud/cashbook-api/internal/auth"
	"github.com/perfeicloud/cashbook-api/internal/config"
	"github.com/perfeicloud/cashbook-api/internal/database"
	"github.com/perfeicloud/cashbook-api/internal/handler"
	"github.com/perfeicloud/cashbook-api/internal/middleware"
	"github.com/perfeicloud/cashbook-api/internal/queue"
	"github.com/perfeicloud/cashbook-api/internal/repository"
	"github.com/perfeicloud/cashbook-api/internal/router"
	"github.com/perfeicloud/cashbook-api/internal/vcode"
	"github.com/perfeicloud/cashbook-api/internal/wechat"
)

func main() {
	// Load a .env file when present; in containers the variables come
	// from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	apps := repository.NewApplicationRepo(db)
	books := repository.NewBookRepo(db)
	accounts := repository.NewAccountRepo(db)
	categories := repository.NewCategoryRepo(db)
	tags := repository.NewTagRepo(db)
	tallies := repository.NewTallyRepo(db)
	perms := repository.NewPermissionRepo(db)

	// Verification codes live in Redis when it is reachable, otherwise
	// in-process.  The memory store is fine for a single instance but
	// codes will not survive a restart or be visible to replicas.
	rdb := config.NewRedisClient(cfg)
	var codes vcode.Store
	if rdb != nil {
		codes = vcode.NewRedisStore(rdb)
	} else {
		log.Println("redis unavailable, using in-memory verification code store")
		codes = vcode.NewMemoryStore()
	}

	authorizer := &auth.Authorizer{
		Apps:   apps,
		Users:  users,
		Codes:  codes,
		Bridge: wechat.New(cfg.WXAPIBase),
		Salt:   cfg.PasswordSalt,
	}
	verifier := &auth.Verifier{Apps: apps}

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, authorizer, users, codes),
		User:     handler.NewUserHandler(users),
		App:      handler.NewApplicationHandler(apps),
		Book:     handler.NewBookHandler(books, users),
		Account:  handler.NewAccountHandler(accounts, books),
		Category: handler.NewCategoryHandler(categories, books),
		Tag:      handler.NewTagHandler(tags, books),
		Tally:    handler.NewTallyHandler(tallies, books),
		Perm:     handler.NewPermissionHandler(perms),
	}

	// The consumer drains the vcode.issued queue and hands codes to the
	// SMS/mail gateway.  Off by default so that API replicas do not all
	// compete for deliveries.
	if os.Getenv("VCODE_CONSUMER") == "1" {
		go queue.StartVCodeConsumer()
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	limiter := middleware.NewLoginLimiter(config.LoadRateLimitConfig(), rdb)
	router.RegisterAuth(e, h, verifier, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
