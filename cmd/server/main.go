package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcleanup "github.com/glimmer-social/backend/internal/auth/cleanup"
	"github.com/glimmer-social/backend/internal/auth/google"
	authhttp "github.com/glimmer-social/backend/internal/auth/http"
	authrepo "github.com/glimmer-social/backend/internal/auth/repository"
	authservice "github.com/glimmer-social/backend/internal/auth/service"
	"github.com/glimmer-social/backend/internal/common/config"
	"github.com/glimmer-social/backend/internal/common/crypto"
	"github.com/glimmer-social/backend/internal/common/db"
	commonhttp "github.com/glimmer-social/backend/internal/common/http"
	"github.com/glimmer-social/backend/internal/common/jwtverify"
	"github.com/glimmer-social/backend/internal/common/logger"
	"github.com/glimmer-social/backend/internal/common/mail"
	"github.com/glimmer-social/backend/internal/common/server"
	"github.com/glimmer-social/backend/internal/common/storage"
	graphservice "github.com/glimmer-social/backend/internal/graph/service"
	messaginghttp "github.com/glimmer-social/backend/internal/messaging/http"
	messagingrepo "github.com/glimmer-social/backend/internal/messaging/repository"
	messagingservice "github.com/glimmer-social/backend/internal/messaging/service"
	notifrepo "github.com/glimmer-social/backend/internal/notification/repository"
	posthttp "github.com/glimmer-social/backend/internal/post/http"
	postrepo "github.com/glimmer-social/backend/internal/post/repository"
	postservice "github.com/glimmer-social/backend/internal/post/service"
	"github.com/glimmer-social/backend/internal/realtime"
	userhttp "github.com/glimmer-social/backend/internal/user/http"
	userrepo "github.com/glimmer-social/backend/internal/user/repository"
)

const serviceName = "glimmer-backend"

func main() {
	log := logger.GetInstance()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := log.Initialize(cfg.LogDir, serviceName, cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	if err := db.ApplyMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	users := userrepo.NewPgRepository(pool)
	notifications := notifrepo.NewPgRepository(pool)
	posts := postrepo.NewPgRepository(pool)
	conversations := messagingrepo.NewPgRepository(pool)
	tokens := authrepo.NewPgTokenRepository(pool)

	hasher := &crypto.BcryptHasher{}
	uuidGen := crypto.NewUUIDGenerator()
	ulidGen := crypto.NewULIDGenerator()

	var mailer mail.Mailer
	if cfg.SMTPAddr != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		log.Warn("SMTP_ADDR not set, mail will only be logged")
		mailer = mail.NewLogMailer(log)
	}

	uploads, err := storage.NewFileStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		log.Fatalf("failed to initialize upload store: %v", err)
	}

	verifier := google.NewTokenInfoVerifier(cfg.GoogleClientID)

	authSvc := authservice.New(users, tokens, hasher, uuidGen, mailer, uploads, verifier, log,
		cfg.JWTSecret, cfg.AccessTokenTTL, cfg.PublicBaseURL)
	graphSvc := graphservice.NewFollowGraph(users, notifications, ulidGen, log, cfg.SuggestionLimit)
	postSvc := postservice.New(posts, users, notifications, ulidGen, log)
	messagingSvc := messagingservice.New(conversations, ulidGen, log)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry, messagingSvc, log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)
	go authcleanup.StartResetTokenCleanup(hubCtx, tokens, log)

	wsCfg := realtime.Config{
		WriteWait:   cfg.WebSocketWriteWait,
		PongWait:    cfg.WebSocketPongWait,
		PingPeriod:  cfg.WebSocketPingPeriod,
		MaxMsgSize:  cfg.WebSocketMaxMsgSize,
		SendBufSize: cfg.WebSocketSendBufSize,
	}

	authHandler := authhttp.NewHandler(authSvc, log)
	userHandler := userhttp.NewHandler(users, graphSvc, notifications, authSvc, log)
	postHandler := posthttp.NewHandler(postSvc, log)
	messagingHandler := messaginghttp.NewHandler(messagingSvc, log)

	guard := jwtverify.Middleware(cfg.JWTSecret, log)
	// Request timeout applies to the REST surface only; /ws upgrades must not
	// inherit a bounded context.
	timeout := commonhttp.WithTimeout(cfg.RequestTimeout)

	mux := http.NewServeMux()
	mux.Handle("/auth/", timeout(authHandler))
	mux.Handle("/users/", timeout(guard(userHandler)))
	mux.Handle("/posts", timeout(guard(postHandler)))
	mux.Handle("/posts/", timeout(guard(postHandler)))
	mux.Handle("/converstations", timeout(guard(messagingHandler)))
	mux.Handle("/converstations/", timeout(guard(messagingHandler)))
	mux.Handle("/messages", timeout(guard(messagingHandler)))
	mux.Handle("/messages/", timeout(guard(messagingHandler)))
	mux.Handle("/ws", realtime.Handler(hub, uuidGen, wsCfg, log))
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	rl := commonhttp.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler := commonhttp.BuildBaseHandler(log, rl, mux)

	if err := server.StartWithGracefulShutdown(log, ":"+cfg.HTTPPort, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
