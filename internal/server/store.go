package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoredAnalysis is one persisted analysis owned by a user. The record store
// returns it unfiltered to the history endpoint.
type StoredAnalysis struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	Role            string             `json:"role"`
	OriginalMessage string             `json:"original_message"`
	AIAnalysis      AnalysisResult     `json:"ai_analysis"`
	ChatHistory     []ConversationTurn `json:"chat_history"`
	CreatedAt       time.Time          `json:"created_at"`
}

type AnalysisStore interface {
	InsertAnalysis(ctx context.Context, userID, role, originalMessage string, analysis AnalysisResult) error
	// UpdateChatHistory overwrites chat_history on the record matching both
	// id and owner, and reports how many rows that compound filter hit.
	UpdateChatHistory(ctx context.Context, analysisID, userID string, history []ConversationTurn) (int64, error)
	ListByOwner(ctx context.Context, userID string, limit int) ([]StoredAnalysis, error)
}

type pgAnalysisStore struct {
	pool *pgxpool.Pool
}

func NewPGAnalysisStore(pool *pgxpool.Pool) AnalysisStore {
	return &pgAnalysisStore{pool: pool}
}

func (s *pgAnalysisStore) InsertAnalysis(ctx context.Context, userID, role, originalMessage string, analysis AnalysisResult) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(
		ctx,
		`INSERT INTO analyses (id, user_id, role, original_message, ai_analysis, chat_history, created_at)
		 VALUES ($1, $2, $3, $4, $5, '[]'::jsonb, NOW())`,
		uuid.NewString(),
		userID,
		role,
		originalMessage,
		analysisJSON,
	)
	return err
}

func (s *pgAnalysisStore) UpdateChatHistory(ctx context.Context, analysisID, userID string, history []ConversationTurn) (int64, error) {
	if history == nil {
		history = []ConversationTurn{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(
		ctx,
		`UPDATE analyses
		 SET chat_history = $1
		 WHERE id = $2 AND user_id = $3`,
		historyJSON,
		analysisID,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *pgAnalysisStore) ListByOwner(ctx context.Context, userID string, limit int) ([]StoredAnalysis, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, user_id, role, original_message, ai_analysis, chat_history, created_at
		 FROM analyses
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]StoredAnalysis, 0)
	for rows.Next() {
		var record StoredAnalysis
		var analysisJSON, historyJSON []byte
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Role,
			&record.OriginalMessage,
			&analysisJSON,
			&historyJSON,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(analysisJSON) > 0 {
			if err := json.Unmarshal(analysisJSON, &record.AIAnalysis); err != nil {
				return nil, err
			}
		}
		if len(historyJSON) > 0 {
			if err := json.Unmarshal(historyJSON, &record.ChatHistory); err != nil {
				return nil, err
			}
		}
		if record.ChatHistory == nil {
			record.ChatHistory = []ConversationTurn{}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
