package domain

import "context"

// JobRepository persists job records. Every method is one short statement;
// implementations never hold a transaction across calls.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByJobID(ctx context.Context, jobID string) (*Job, error)
	// Update applies upd to a non-terminal job. It returns ErrNotFound for an
	// unknown key and ErrJobFinalized once the job is completed or failed.
	Update(ctx context.Context, jobID string, upd JobUpdate) error
}

// PromptRepository handles persistence for prompt templates.
type PromptRepository interface {
	List(ctx context.Context) ([]Prompt, error)
	GetByName(ctx context.Context, name string) (*Prompt, error)
	GetByNameAndType(ctx context.Context, name string, typ PromptType) (*Prompt, error)
	Update(ctx context.Context, name, text string, description *string) (*Prompt, error)
	// Seed inserts p unless a prompt with the same name exists and reports
	// whether a row was written.
	Seed(ctx context.Context, p Prompt) (bool, error)
}

// BlobStore is a key to bytes store with prefix listing.
type BlobStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TextGenerator drafts free text from a system and a user instruction.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
