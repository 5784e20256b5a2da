package cmd

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/daito-dot/gemini-chatbot/internal/chat"
	"github.com/daito-dot/gemini-chatbot/internal/loader"
	"github.com/daito-dot/gemini-chatbot/internal/storage"
)

// PresetKeyPrefix marks documents registered from a preset source rather
// than uploaded by the user.
const PresetKeyPrefix = "[preset] "

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// LoadPresetDocuments registers every supported document from the store on
// the session under a "[preset] " prefixed key. A document that fails to
// load is logged and skipped so it cannot block the rest; keys already
// present on the session are left untouched.
func LoadPresetDocuments(ctx context.Context, store storage.ObjectStore, ldr *loader.DocumentLoader, session *chat.ChatSession) {
	objects, err := store.ListObjects(ctx, "")
	if err != nil {
		slog.Warn("could not list preset documents, skipping preset load", "error", err)
		return
	}

	registered := make(map[string]bool)
	for _, key := range session.ListDocuments() {
		registered[key] = true
	}

	for _, obj := range objects {
		if !loader.SupportedFilename(obj.Name) {
			continue
		}

		key := PresetKeyPrefix + obj.Name
		if registered[key] {
			continue
		}

		data, err := store.GetObject(ctx, obj.Name)
		if err != nil {
			slog.Warn("could not read preset document", "name", obj.Name, "error", err)
			continue
		}

		content, err := ldr.Load(data, obj.Name)
		if err != nil {
			slog.Warn("could not extract preset document", "name", obj.Name, "error", err)
			continue
		}

		session.AddDocument(key, content)
		slog.Info("loaded preset document", "key", key, "size", obj.Size)
	}
}
