package domain

import "time"

// PromptType distinguishes system instructions from user templates.
type PromptType string

const (
	PromptTypeSystem PromptType = "system"
	PromptTypeUser   PromptType = "user"
)

// Well-known prompt names loaded by the job runner.
const (
	PromptDescriptionSystem = "description_system"
	PromptFullDescription   = "full_description"
)

// Prompt is an editable prompt template stored alongside jobs.
type Prompt struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Type        PromptType `json:"prompt_type"`
	Description string     `json:"description"`
	Text        string     `json:"prompt_text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
