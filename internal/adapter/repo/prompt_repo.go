package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"descsvc/internal/domain"
	"descsvc/internal/infra"
	"descsvc/internal/sqlinline"
)

// PromptRepositoryPG implements domain.PromptRepository on Postgres.
type PromptRepositoryPG struct {
	db infra.SQLExecutor
}

func NewPromptRepository(db infra.SQLExecutor) *PromptRepositoryPG {
	return &PromptRepositoryPG{db: db}
}

func (r *PromptRepositoryPG) List(ctx context.Context) ([]domain.Prompt, error) {
	rows, err := r.db.Query(ctx, sqlinline.QPromptList)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	prompts := []domain.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, *p)
	}
	return prompts, rows.Err()
}

func (r *PromptRepositoryPG) GetByName(ctx context.Context, name string) (*domain.Prompt, error) {
	return scanPrompt(r.db.QueryRow(ctx, sqlinline.QPromptGetByName, name))
}

func (r *PromptRepositoryPG) GetByNameAndType(ctx context.Context, name string, typ domain.PromptType) (*domain.Prompt, error) {
	return scanPrompt(r.db.QueryRow(ctx, sqlinline.QPromptGetByNameAndType, name, string(typ)))
}

func (r *PromptRepositoryPG) Update(ctx context.Context, name, text string, description *string) (*domain.Prompt, error) {
	return scanPrompt(r.db.QueryRow(ctx, sqlinline.QPromptUpdate, name, text, description))
}

func (r *PromptRepositoryPG) Seed(ctx context.Context, p domain.Prompt) (bool, error) {
	tag, err := r.db.Exec(ctx, sqlinline.QPromptSeed, p.Name, string(p.Type), p.Description, p.Text)
	if err != nil {
		return false, fmt.Errorf("seed prompt %s: %w", p.Name, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPrompt(row pgx.Row) (*domain.Prompt, error) {
	var (
		p   domain.Prompt
		typ string
	)
	if err := row.Scan(&p.ID, &p.Name, &typ, &p.Description, &p.Text, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Type = domain.PromptType(typ)
	return &p, nil
}

var _ domain.PromptRepository = (*PromptRepositoryPG)(nil)
