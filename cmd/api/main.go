package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"alfredoptarigan/resume-analyzer/internal/bootstrap"
	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/server"
)

func main() {
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	components, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}
	log.Println("✅ Services initialized successfully")

	app := server.NewApp(server.Dependencies{
		Storage:     components.Storage,
		Pipeline:    components.Pipeline,
		Resolver:    components.Resolver,
		AuditRepo:   components.AuditRepo,
		Provider:    cfg.LLM.Provider,
		MaxFileSize: cfg.Storage.MaxFileSize,
		AccessLog:   true,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
