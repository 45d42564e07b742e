package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"merkle-validity-service/authority"
	"merkle-validity-service/handlers"
	"merkle-validity-service/service"
)

func main() {
	cfg := LoadConfig()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	var source service.ProofSource
	var admin handlers.ProofAdmin
	if cfg.DBPath != "" {
		store, err := service.NewProofStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open proof store: %v", err)
		}
		defer store.Close()
		source, admin = store, store
	} else {
		static := service.NewStaticSource()
		source, admin = static, static
	}

	srv, err := authority.Listen(cfg.Port, source)
	if err != nil {
		log.Fatalf("Failed to start authority: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve()
	}()

	var adminSrv *http.Server
	if cfg.AdminPort > 0 {
		h := handlers.NewHandler(admin)

		router := gin.New()
		router.Use(gin.Logger(), gin.Recovery())

		router.GET("/health", h.Health)
		router.GET("/proofs/:item", h.GetProof)
		router.POST("/proofs", h.PutProof)

		adminSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.AdminPort),
			Handler: router,
		}
		go func() {
			log.Printf("admin surface on port %d", cfg.AdminPort)
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Admin server failed: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errc:
		log.Fatalf("Authority failed: %v", err)
	}

	log.Println("Shutting down...")

	srv.Close()
	if adminSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adminSrv.Shutdown(ctx); err != nil {
			log.Fatalf("Forced shutdown: %v", err)
		}
	}

	log.Println("Bye")
}
