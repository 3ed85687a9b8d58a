package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"descsvc/internal/bootstrap"
	"descsvc/internal/domain"
	"descsvc/internal/prompts"
)

const maxPromptLength = 10000

// promptDoc is the YAML shape printed and accepted by the prompts commands.
type promptDoc struct {
	Name        string    `yaml:"name"`
	Type        string    `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
	Text        string    `yaml:"text"`
	UpdatedAt   time.Time `yaml:"updated_at,omitempty"`
}

func toDoc(p domain.Prompt) promptDoc {
	return promptDoc{
		Name:        p.Name,
		Type:        string(p.Type),
		Description: p.Description,
		Text:        p.Text,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newPromptsCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Inspect and edit prompt templates",
	}
	cmd.AddCommand(newPromptsListCmd(envFile))
	cmd.AddCommand(newPromptsGetCmd(envFile))
	cmd.AddCommand(newPromptsSetCmd(envFile))
	cmd.AddCommand(newPromptsSeedCmd(envFile))
	cmd.AddCommand(newPromptsDefaultsCmd())
	return cmd
}

func newPromptsListCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, *envFile, func(ctx context.Context, stores *bootstrap.Stores, _ zerolog.Logger) error {
				list, err := stores.Prompts.List(ctx)
				if err != nil {
					return err
				}
				return printPromptTable(cmd.OutOrStdout(), list)
			})
		},
	}
}

func printPromptTable(out io.Writer, list []domain.Prompt) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tCHARS\tUPDATED\tDESCRIPTION")
	for _, p := range list {
		updated := "-"
		if !p.UpdatedAt.IsZero() {
			updated = p.UpdatedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.Name, p.Type, utf8.RuneCountInString(p.Text), updated, p.Description)
	}
	return w.Flush()
}

func newPromptsGetCmd(envFile *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print one prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, *envFile, func(ctx context.Context, stores *bootstrap.Stores, _ zerolog.Logger) error {
				p, err := stores.Prompts.GetByName(ctx, args[0])
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("prompt %q not found", args[0])
				}
				if err != nil {
					return err
				}
				return printPrompt(cmd.OutOrStdout(), *p, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, yaml or json")
	return cmd
}

func printPrompt(out io.Writer, p domain.Prompt, format string) error {
	switch format {
	case "text":
		_, err := fmt.Fprintln(out, p.Text)
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(toDoc(p)); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newPromptsSetCmd(envFile *string) *cobra.Command {
	var (
		file        string
		text        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "set NAME",
		Short: "Replace a prompt's text",
		Long: `Replaces the text of an existing prompt. The new text comes from --text or
from --file ("-" reads standard input).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := promptText(cmd.InOrStdin(), text, file)
			if err != nil {
				return err
			}
			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			return withStores(cmd, *envFile, func(ctx context.Context, stores *bootstrap.Stores, logger zerolog.Logger) error {
				p, err := stores.Prompts.Update(ctx, args[0], body, desc)
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("prompt %q not found", args[0])
				}
				if err != nil {
					return err
				}
				logger.Info().Str("prompt", p.Name).Msg("prompt updated")
				fmt.Fprintf(cmd.OutOrStdout(), "prompt %q updated (%d chars)\n", p.Name, utf8.RuneCountInString(p.Text))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read the prompt text from this file")
	cmd.Flags().StringVar(&text, "text", "", "prompt text")
	cmd.Flags().StringVar(&description, "description", "", "replace the prompt description")
	cmd.MarkFlagsMutuallyExclusive("file", "text")
	cmd.MarkFlagsOneRequired("file", "text")
	return cmd
}

// promptText resolves the new prompt body and applies the same rules as the
// admin API.
func promptText(stdin io.Reader, text, file string) (string, error) {
	body := text
	if file != "" {
		var raw []byte
		var err error
		if file == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(file)
		}
		if err != nil {
			return "", fmt.Errorf("read prompt text: %w", err)
		}
		body = string(raw)
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("prompt_text cannot be empty")
	}
	if utf8.RuneCountInString(body) > maxPromptLength {
		return "", fmt.Errorf("prompt_text too long: maximum %d characters", maxPromptLength)
	}
	return body, nil
}

func newPromptsSeedCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert default prompts that are missing",
		Long:  "Inserts every embedded default prompt whose name is not stored yet. Existing prompts are never overwritten.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, *envFile, func(ctx context.Context, stores *bootstrap.Stores, logger zerolog.Logger) error {
				n, err := prompts.Seed(ctx, stores.Prompts, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d default prompts inserted\n", n)
				return nil
			})
		},
	}
}

func newPromptsDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the embedded default prompts as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := prompts.Defaults()
			if err != nil {
				return err
			}
			docs := make([]promptDoc, 0, len(defaults))
			for _, p := range defaults {
				docs = append(docs, toDoc(p))
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(map[string][]promptDoc{"prompts": docs}); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
