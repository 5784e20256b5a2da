package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daito-dot/gemini-chatbot/cmd"
	"github.com/daito-dot/gemini-chatbot/internal/api"
	"github.com/daito-dot/gemini-chatbot/internal/chat"
	"github.com/daito-dot/gemini-chatbot/internal/llm"
	"github.com/daito-dot/gemini-chatbot/internal/loader"
	"github.com/daito-dot/gemini-chatbot/internal/storage"
)

type ServerConfig struct {
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model        string `env:"MODEL" envDefault:"gemini-1.5-flash"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	APIPort      string `env:"API_PORT" envDefault:"8000"`

	// Preset documents are loaded from a local directory, or from an S3
	// bucket when PRESET_BUCKET_NAME is set.
	PresetDocsDir     string `env:"PRESET_DOCS_DIR" envDefault:"docs"`
	PresetBucketName  string `env:"PRESET_BUCKET_NAME"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func (cfg *ServerConfig) apiKey() string {
	if cfg.LLMProvider == "openai" {
		return cfg.OpenAIAPIKey
	}
	return cfg.GeminiAPIKey
}

func main() {
	log.Println("Starting chat server...")

	cmd.LoadEnvFile()

	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	if cfg.apiKey() == "" {
		log.Fatalf("no API key configured for llm provider '%s'", cfg.LLMProvider)
	}

	completer, err := llm.New(context.Background(), cfg.LLMProvider, cfg.Model, cfg.apiKey())
	if err != nil {
		log.Fatalf("Failed to create llm client: %v", err)
	}

	documentLoader := loader.NewDocumentLoader()
	session := chat.NewChatSession(completer)

	loadPresets(&cfg, documentLoader, session)

	// --- Chi Router Setup ---
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// The service owns the one session and transcript for this process; no
	// ambient session store.
	chatHandler := api.NewChatService(documentLoader, session)
	chatHandler.AddRoutes(r)

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Chat server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}

func loadPresets(cfg *ServerConfig, documentLoader *loader.DocumentLoader, session *chat.ChatSession) {
	var store storage.ObjectStore

	if cfg.PresetBucketName != "" {
		s3Store, err := storage.NewS3Provider(storage.S3Config{
			EndpointURL:     cfg.S3EndpointURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.PresetBucketName,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 client: %v", err)
		}
		store = s3Store
	} else {
		if _, err := os.Stat(cfg.PresetDocsDir); err != nil {
			return
		}
		store = storage.NewLocalProvider(cfg.PresetDocsDir)
	}

	cmd.LoadPresetDocuments(context.Background(), store, documentLoader, session)
}
