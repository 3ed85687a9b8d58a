// Package prompts ships the default prompt templates and fills them for a job.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"descsvc/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type defaultsFile struct {
	Prompts []struct {
		Name        string `yaml:"name"`
		Type        string `yaml:"type"`
		Description string `yaml:"description"`
		Text        string `yaml:"text"`
	} `yaml:"prompts"`
}

// Defaults returns the embedded prompt templates.
func Defaults() ([]domain.Prompt, error) {
	return parseDefaults(defaultsYAML)
}

func parseDefaults(raw []byte) ([]domain.Prompt, error) {
	var file defaultsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse prompt defaults: %w", err)
	}
	out := make([]domain.Prompt, 0, len(file.Prompts))
	for _, p := range file.Prompts {
		typ := domain.PromptType(p.Type)
		if typ != domain.PromptTypeSystem && typ != domain.PromptTypeUser {
			return nil, fmt.Errorf("prompt %q: unknown type %q", p.Name, p.Type)
		}
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Text) == "" {
			return nil, fmt.Errorf("prompt defaults: name and text are required")
		}
		out = append(out, domain.Prompt{
			Name:        p.Name,
			Type:        typ,
			Description: p.Description,
			Text:        strings.TrimRight(p.Text, "\n"),
		})
	}
	return out, nil
}

// Seed inserts every default prompt that is not stored yet and returns how
// many were written.
func Seed(ctx context.Context, repo domain.PromptRepository, logger zerolog.Logger) (int, error) {
	defaults, err := Defaults()
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, p := range defaults {
		ok, err := repo.Seed(ctx, p)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
			logger.Info().Str("prompt", p.Name).Msg("prompt seeded")
		}
	}
	return inserted, nil
}

// Fill substitutes the subject and context placeholders in a user template.
func Fill(template, subject, background string) string {
	return strings.NewReplacer(
		"{subject}", subject,
		"{novel_name}", subject,
		"{context}", background,
		"{novel_context}", background,
	).Replace(template)
}

// Load fetches the system and user prompts a description job runs with.
func Load(ctx context.Context, repo domain.PromptRepository) (system, user string, err error) {
	sys, err := repo.GetByNameAndType(ctx, domain.PromptDescriptionSystem, domain.PromptTypeSystem)
	if err != nil {
		return "", "", fmt.Errorf("load prompt %s: %w", domain.PromptDescriptionSystem, err)
	}
	usr, err := repo.GetByNameAndType(ctx, domain.PromptFullDescription, domain.PromptTypeUser)
	if err != nil {
		return "", "", fmt.Errorf("load prompt %s: %w", domain.PromptFullDescription, err)
	}
	return sys.Text, usr.Text, nil
}
