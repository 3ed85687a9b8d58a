package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"descsvc/internal/domain"
	"descsvc/internal/sqlinline"
)

func promptRow(name string, typ domain.PromptType, text string) func([]any) pgx.Row {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func([]any) pgx.Row {
		return simpleRow{scan: func(dest ...any) error {
			return assign(dest, int64(1), name, string(typ), "desc", text, ts, ts)
		}}
	}
}

func TestPromptRepositoryGetByNameAndType(t *testing.T) {
	exec := newStubExecutor()
	exec.rows[sqlinline.QPromptGetByNameAndType] = promptRow(domain.PromptDescriptionSystem, domain.PromptTypeSystem, "be concise")
	repo := NewPromptRepository(exec)

	p, err := repo.GetByNameAndType(context.Background(), domain.PromptDescriptionSystem, domain.PromptTypeSystem)
	if err != nil {
		t.Fatalf("GetByNameAndType returned error: %v", err)
	}
	if p.Type != domain.PromptTypeSystem || p.Text != "be concise" {
		t.Fatalf("unexpected prompt: %+v", p)
	}
	args := exec.args[sqlinline.QPromptGetByNameAndType]
	if args[1] != "system" {
		t.Fatalf("type arg = %v", args[1])
	}
}

func TestPromptRepositoryNotFound(t *testing.T) {
	repo := NewPromptRepository(newStubExecutor())
	if _, err := repo.GetByName(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Update(context.Background(), "nope", "text", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestPromptRepositorySeed(t *testing.T) {
	exec := newStubExecutor()
	exec.execTag[sqlinline.QPromptSeed] = pgconn.NewCommandTag("INSERT 0 1")
	repo := NewPromptRepository(exec)

	inserted, err := repo.Seed(context.Background(), domain.Prompt{Name: "x", Type: domain.PromptTypeUser, Text: "t"})
	if err != nil || !inserted {
		t.Fatalf("Seed = %v, %v", inserted, err)
	}

	exec.execTag[sqlinline.QPromptSeed] = pgconn.NewCommandTag("INSERT 0 0")
	inserted, err = repo.Seed(context.Background(), domain.Prompt{Name: "x", Type: domain.PromptTypeUser, Text: "t"})
	if err != nil || inserted {
		t.Fatalf("second Seed = %v, %v", inserted, err)
	}
}
