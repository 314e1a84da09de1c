package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/helpdesk/internal/llm"
)

// RunWizard asks for the main settings interactively, saves them to path
// and returns the resulting Config.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to helpdesk! Let's configure the assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"google", "anthropic", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   (fastest, cheapest)",
			"normal (balanced)",
			"max    (highest quality)",
		},
		CursorPos: 1,
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	cfg.Quality = []QualityTier{QualityLite, QualityNormal, QualityMax}[qualityIdx]

	preset := GetPreset(cfg.Provider, cfg.Quality)
	cfg.Model = preset.Model
	if cfg.Provider != ProviderAnthropic {
		cfg.Search.EmbeddingModel = preset.EmbeddingModel
	}

	institutionPrompt := promptui.Prompt{
		Label:   "Institution name",
		Default: cfg.Institution,
	}
	if cfg.Institution, err = institutionPrompt.Run(); err != nil {
		return nil, fmt.Errorf("institution: %w", err)
	}

	knowledgePrompt := promptui.Prompt{
		Label:   "Knowledge base path (file, directory or glob; blank for built-in records)",
		Default: "",
	}
	if cfg.KnowledgePath, err = knowledgePrompt.Run(); err != nil {
		return nil, fmt.Errorf("knowledge path: %w", err)
	}

	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := llm.APIKeyEnvVar(string(cfg.Provider)); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running helpdesk.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
