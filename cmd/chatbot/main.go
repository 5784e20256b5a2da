package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/daito-dot/gemini-chatbot/cmd"
	"github.com/daito-dot/gemini-chatbot/internal/chat"
	"github.com/daito-dot/gemini-chatbot/internal/llm"
	"github.com/daito-dot/gemini-chatbot/internal/loader"
)

type ChatbotConfig struct {
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model        string `env:"MODEL" envDefault:"gemini-1.5-flash"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
}

func (cfg *ChatbotConfig) apiKey() string {
	if cfg.LLMProvider == "openai" {
		return cfg.OpenAIAPIKey
	}
	return cfg.GeminiAPIKey
}

func main() {
	cmd.LoadEnvFile()

	var cfg ChatbotConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	if cfg.apiKey() == "" {
		log.Fatalf("no API key configured for llm provider '%s'", cfg.LLMProvider)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	completer, err := llm.New(ctx, cfg.LLMProvider, cfg.Model, cfg.apiKey())
	if err != nil {
		log.Fatalf("Failed to create llm client: %v", err)
	}

	session := chat.NewChatSession(completer)
	ingestFiles(session, flag.Args())

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("Document Chat"))
	fmt.Printf("Using model: %s\n", boldCyan(cfg.Model))
	fmt.Printf("Documents loaded: %d\n", len(session.ListDocuments()))
	fmt.Println("Type your question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		if strings.EqualFold(input, "exit") {
			break
		}
		if input == "" {
			continue
		}

		fmt.Print(boldCyan("Assistant: "))
		fmt.Println(session.Generate(ctx, input))
		fmt.Println()
	}
}

// ingestFiles preloads the documents named as positional arguments.
// flag.Parse has already run inside cmd.LoadEnvFile.
func ingestFiles(session *chat.ChatSession, paths []string) {
	if len(paths) == 0 {
		return
	}

	documentLoader := loader.NewDocumentLoader()

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("loading documents"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	for _, path := range paths {
		content, err := documentLoader.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
		} else {
			session.AddDocument(path, content)
		}
		_ = bar.Add(1)
	}
}
