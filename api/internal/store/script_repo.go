package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = sql.ErrNoRows

type ScriptRepo struct{ DB *sql.DB }

func NewScriptRepo(db *sql.DB) *ScriptRepo { return &ScriptRepo{DB: db} }

// Script is a saved interview script; QuestionsJSON is stored as jsonb and
// passed through untouched.
type Script struct {
	ID            int64           `json:"id"`
	RecruiterID   string          `json:"recruiter_id"`
	ResumeText    string          `json:"resume_text"`
	QuestionsJSON json.RawMessage `json:"questions_json"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Save inserts a new script and returns the stored row.
func (r *ScriptRepo) Save(ctx context.Context, recruiterID, resumeText string, questions json.RawMessage) (*Script, error) {
	if !json.Valid(questions) {
		return nil, errors.New("questions_json is not valid JSON")
	}
	const q = `
insert into scripts (recruiter_id, resume_text, questions_json)
values ($1, $2, $3::jsonb)
returning id, created_at, updated_at`
	s := &Script{
		RecruiterID:   recruiterID,
		ResumeText:    resumeText,
		QuestionsJSON: questions,
	}
	if err := r.DB.QueryRowContext(ctx, q, recruiterID, resumeText, string(questions)).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("save script: %w", err)
	}
	return s, nil
}

// Get returns ErrNotFound when no script has the id.
func (r *ScriptRepo) Get(ctx context.Context, id int64) (*Script, error) {
	const q = `
select id, coalesce(recruiter_id, '') as recruiter_id, resume_text, questions_json, created_at, updated_at
from scripts
where id = $1`
	var (
		s  Script
		js []byte
	)
	err := r.DB.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.RecruiterID, &s.ResumeText, &js, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get script %d: %w", id, err)
	}
	s.QuestionsJSON = json.RawMessage(js)
	return &s, nil
}
