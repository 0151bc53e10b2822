// Package main, sohbet backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//   1.  Config'i yükle
//   2.  Database'i başlat (embedded migration'lar ile)
//   3.  Süresi geçmiş oturumları temizle
//   4.  Repository'leri oluştur (DB bağlantısı ile)
//   5.  Service'leri oluştur (repository'ler + LLM client ile)
//   6.  Handler'ları oluştur (service'ler ile)
//   7.  Middleware'ları oluştur (service + repo'lar ile)
//   8.  HTTP router'ı kur, route'ları bağla
//   9.  CORS yapılandır
//  10.  HTTP Server'ı başlat
//  11.  Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinalp/sohbet/config"
	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/handlers"
	"github.com/akinalp/sohbet/middleware"
	"github.com/akinalp/sohbet/pkg/cookie"
	"github.com/akinalp/sohbet/pkg/llm"
	"github.com/akinalp/sohbet/pkg/ratelimit"
	"github.com/akinalp/sohbet/repository"
	"github.com/akinalp/sohbet/services"
	"github.com/akinalp/sohbet/static"
	"github.com/rs/cors"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] sohbet server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (env=%s port=%d)", cfg.Env, cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to access embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	sessionRepo := repository.NewSQLiteSessionRepo(db.Conn)
	conversationRepo := repository.NewSQLiteConversationRepo(db.Conn)
	messageRepo := repository.NewSQLiteMessageRepo(db.Conn)

	// Süresi geçmiş oturumlar zaten işe yaramaz — startup'ta temizle
	if err := sessionRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("[main] failed to prune expired sessions: %v", err)
	}

	// ─── 4. Service Layer ───
	llmClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)

	accessService := services.NewAccessService(cfg.Access.Code)
	authService := services.NewAuthService(userRepo, sessionRepo, cfg.OAuth, cfg.Session)
	conversationService := services.NewConversationService(db.Conn, conversationRepo, messageRepo)
	chatService := services.NewChatService(db.Conn, conversationRepo, llmClient)

	// ─── 5. Cookie Manager ───
	//
	// Development'ta Secure flag kapalı — localhost HTTP üzerinden
	// cookie yazılabilsin. Production'da her cookie Secure.
	cookies := cookie.NewManager(!cfg.IsDevelopment())

	// ─── 6. Handler Layer ───
	accessHandler := handlers.NewAccessHandler(accessService, cookies)
	authHandler := handlers.NewAuthHandler(authService, cookies, cfg.IsDevelopment())
	conversationHandler := handlers.NewConversationHandler(conversationService)
	messageHandler := handlers.NewMessageHandler(conversationService)

	// Chat rate limit: dakikada 10 completion, aşımda 30sn cooldown.
	// Access gate ve CRUD endpoint'leri limitsiz — maliyetli olan LLM çağrısı.
	chatLimiter := ratelimit.NewChatRateLimiter(10, time.Minute, 30*time.Second)
	chatHandler := handlers.NewChatHandler(chatService, chatLimiter)

	frontendFS, err := fs.Sub(static.FrontendFS, "dist")
	if err != nil {
		log.Fatalf("[main] failed to access embedded frontend: %v", err)
	}
	spaHandler := handlers.NewSPAHandler(frontendFS)

	// ─── 7. Middleware ───
	authMiddleware := middleware.NewAuthMiddleware(authService, userRepo, cookies)
	sessionMiddleware := middleware.NewSessionMiddleware(authService, cookies)

	// ─── 8. HTTP Router ───
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"sohbet"}`)
	})

	// Access gate — public, oturum gerektirmez
	mux.HandleFunc("POST /api/validate-access", accessHandler.Validate)

	// OAuth akışı — public. Callback, access gate cookie'sini kendi kontrol eder.
	mux.HandleFunc("GET /auth/login", authHandler.Login)
	mux.HandleFunc("GET /auth/callback", authHandler.Callback)

	// Session — refresh cookie üzerinden çalışır, access token gerektirmez
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Protected endpoint'ler — authMiddleware.Require() sarar
	mux.Handle("GET /api/users/me", authMiddleware.Require(http.HandlerFunc(authHandler.Me)))

	// Conversations — hepsi sahiplik kontrolünden geçer (service katmanında)
	mux.Handle("GET /api/conversations", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.List)))
	mux.Handle("POST /api/conversations", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.Create)))
	mux.Handle("GET /api/conversations/{id}", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.Get)))
	mux.Handle("PATCH /api/conversations/{id}", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.Update)))
	mux.Handle("DELETE /api/conversations/{id}", authMiddleware.Require(
		http.HandlerFunc(conversationHandler.Delete)))

	// Messages — conversation'a bağlı, sahiplik yine service'de
	mux.Handle("GET /api/conversations/{id}/messages", authMiddleware.Require(
		http.HandlerFunc(messageHandler.List)))
	mux.Handle("POST /api/conversations/{id}/messages", authMiddleware.Require(
		http.HandlerFunc(messageHandler.Create)))

	// Chat — SSE streaming endpoint
	mux.Handle("POST /api/chat", authMiddleware.Require(
		http.HandlerFunc(chatHandler.Stream)))

	// SPA — API olmayan her şey frontend'e düşer.
	// sessionMiddleware.Refresh sayfa yüklenmeden önce süresi dolmuş
	// oturumu sessizce tazeler; asla engellemez.
	mux.Handle("/", sessionMiddleware.Refresh(spaHandler))

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000", // Vite dev server
			"http://localhost:8080",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	//
	// WriteTimeout 0: SSE stream'leri dakikalarca sürebilir, sabit bir
	// write timeout stream'i ortadan keser. İstek iptali ctx üzerinden gelir.
	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
