package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"descsvc/internal/bootstrap"
	"descsvc/internal/description"
	"descsvc/internal/domain"
	"descsvc/internal/infra"
	"descsvc/pkg/zip"
)

func newExportCmd(envFile *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export SUBJECT",
		Short: "Bundle every rendered description of a subject into a zip file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := args[0]
			if description.HasPathSeparator(subject) || description.IsDotSegment(subject) {
				return fmt.Errorf("invalid subject %q: must be a single path segment", subject)
			}
			if out == "" {
				out = subject + ".zip"
			}
			if err := infra.LoadDotEnv(*envFile); err != nil {
				return fmt.Errorf("load %s: %w", *envFile, err)
			}
			cfg, err := infra.LoadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			blobs, err := bootstrap.OpenBlobStore(ctx, cfg)
			if err != nil {
				return err
			}
			n, err := exportSubject(ctx, blobs, subject, out, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d descriptions to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "archive path (default SUBJECT.zip)")
	return cmd
}

func exportSubject(ctx context.Context, blobs domain.BlobStore, subject, out string, now time.Time) (int, error) {
	prefix := description.OutputPrefix(subject)
	keys, err := blobs.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	items := description.ItemsFromKeys(prefix, keys)
	if len(items) == 0 {
		return 0, fmt.Errorf("no descriptions stored for subject %q", subject)
	}
	entries := make([]zip.Entry, 0, len(items))
	for _, item := range items {
		data, err := blobs.Get(ctx, description.OutputKey(subject, item))
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", item, err)
		}
		entries = append(entries, zip.Entry{Name: item + ".txt", Data: data})
	}
	archive, err := zip.Archive(entries, now)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, archive, 0o644); err != nil {
		return 0, fmt.Errorf("write archive: %w", err)
	}
	return len(entries), nil
}
