package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stumpworks/stumpcast/pkg/models"
)

type workflowRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	SpeechIDs string         `db:"speech_ids"`
	Script    sql.NullString `db:"script"`
	AudioURL  sql.NullString `db:"audio_url"`
	RSSURL    sql.NullString `db:"rss_url"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r workflowRow) toModel() (models.Workflow, error) {
	var ids []string
	if err := json.Unmarshal([]byte(r.SpeechIDs), &ids); err != nil {
		return models.Workflow{}, ioErr("decode_speech_ids", err)
	}
	return models.Workflow{
		ID:        r.ID,
		Name:      r.Name,
		SpeechIDs: ids,
		Script:    r.Script.String,
		AudioURL:  r.AudioURL.String,
		RSSURL:    r.RSSURL.String,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// CreateWorkflow creates a draft workflow over the given speech ids.
func (s *Store) CreateWorkflow(ctx context.Context, name string, speechIDs []string) (models.Workflow, error) {
	idsJSON, err := json.Marshal(speechIDs)
	if err != nil {
		return models.Workflow{}, ioErr("create_workflow", err)
	}

	now := time.Now().UTC()
	wf := models.Workflow{
		ID:        uuid.NewString(),
		Name:      name,
		SpeechIDs: speechIDs,
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, speech_ids, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		wf.ID, wf.Name, string(idsJSON), wf.Status, wf.CreatedAt, wf.UpdatedAt)
	if err != nil {
		return models.Workflow{}, ioErr("create_workflow", err)
	}
	return wf, nil
}

// GetWorkflow fetches a workflow by id.
func (s *Store) GetWorkflow(ctx context.Context, id string) (models.Workflow, error) {
	var row workflowRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM workflows WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Workflow{}, notFound("get_workflow")
	}
	if err != nil {
		return models.Workflow{}, ioErr("get_workflow", err)
	}
	return row.toModel()
}

// UpdateWorkflow applies a partial update of the mutable fields and bumps
// updated_at. Nil fields in the update are left untouched.
func (s *Store) UpdateWorkflow(ctx context.Context, id string, update models.WorkflowUpdate) (models.Workflow, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if update.Script != nil {
		sets = append(sets, "script = ?")
		args = append(args, *update.Script)
	}
	if update.AudioURL != nil {
		sets = append(sets, "audio_url = ?")
		args = append(args, *update.AudioURL)
	}
	if update.RSSURL != nil {
		sets = append(sets, "rss_url = ?")
		args = append(args, *update.RSSURL)
	}
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE workflows SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return models.Workflow{}, ioErr("update_workflow", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Workflow{}, ioErr("update_workflow", err)
	}
	if n == 0 {
		return models.Workflow{}, notFound("update_workflow")
	}
	return s.GetWorkflow(ctx, id)
}
