package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"descsvc/internal/domain"
)

const promptColumns = `id, name, prompt_type, COALESCE(description, ''), prompt_text, created_at, updated_at`

// PromptRepository implements domain.PromptRepository using SQLite.
type PromptRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *PromptRepository) List(ctx context.Context) ([]domain.Prompt, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+promptColumns+` FROM ai_prompts ORDER BY name ASC`)
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

func (r *PromptRepository) GetByName(ctx context.Context, name string) (*domain.Prompt, error) {
	return scanPrompt(r.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM ai_prompts WHERE name = ?`, name))
}

func (r *PromptRepository) GetByNameAndType(ctx context.Context, name string, typ domain.PromptType) (*domain.Prompt, error) {
	return scanPrompt(r.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM ai_prompts WHERE name = ? AND prompt_type = ?`, name, string(typ)))
}

func (r *PromptRepository) Update(ctx context.Context, name, text string, description *string) (*domain.Prompt, error) {
	var desc sql.NullString
	if description != nil {
		desc = sql.NullString{String: *description, Valid: true}
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE ai_prompts SET prompt_text = ?, description = COALESCE(?, description), updated_at = ? WHERE name = ?`,
		text, desc, r.now(), name,
	)
	if err != nil {
		return nil, fmt.Errorf("update prompt: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByName(ctx, name)
}

func (r *PromptRepository) Seed(ctx context.Context, p domain.Prompt) (bool, error) {
	now := r.now()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO ai_prompts (name, prompt_type, description, prompt_text, created_at, updated_at)
		 VALUES (?, ?, NULLIF(?, ''), ?, ?, ?)
		 ON CONFLICT (name) DO NOTHING`,
		p.Name, string(p.Type), p.Description, p.Text, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("seed prompt %s: %w", p.Name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanPrompt(row scanner) (*domain.Prompt, error) {
	var (
		p   domain.Prompt
		typ string
	)
	err := row.Scan(&p.ID, &p.Name, &typ, &p.Description, &p.Text, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Type = domain.PromptType(typ)
	return &p, nil
}

var _ domain.PromptRepository = (*PromptRepository)(nil)
