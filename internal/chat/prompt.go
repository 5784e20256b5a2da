package chat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptConfig struct {
	Persona     string   `yaml:"persona"`
	Instruction string   `yaml:"instruction"`
	Rules       []string `yaml:"rules"`
	NoDocuments string   `yaml:"no_documents"`
}

var prompts = mustLoadPrompts()

func mustLoadPrompts() promptConfig {
	var cfg promptConfig
	if err := yaml.Unmarshal(promptsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("could not parse embedded prompts.yaml: %v", err))
	}
	return cfg
}

// NoDocumentsMessage is the fixed guidance returned by Generate when the
// document collection is empty.
func NoDocumentsMessage() string {
	return prompts.NoDocuments
}

// buildPrompt assembles the single instruction prompt sent to the model:
// persona, rules, the document context block, and the literal query, in that
// fixed order.
func buildPrompt(context, query string) string {
	var b strings.Builder

	b.WriteString(prompts.Persona)
	b.WriteString("\n")
	b.WriteString(prompts.Instruction)
	b.WriteString("\n\n## Rules\n")
	for _, rule := range prompts.Rules {
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteString("\n")
	}
	b.WriteString("\n## Documents\n")
	b.WriteString(context)
	b.WriteString("\n\n## Question\n")
	b.WriteString(query)
	b.WriteString("\n\n## Answer")

	return b.String()
}
