package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/patrickudo2004/parchments/core/errors"
)

// CreateNote inserts a new note, assigning its ID and timestamps.
// Notes start with empty content; every subsequent edit goes through
// UpdateNote.
func (s *Store) CreateNote(ctx context.Context, note Note) (Note, error) {
	note.ID = uuid.New().String()
	now := time.Now().UnixMilli()
	note.CreatedAt = now
	note.UpdatedAt = now
	if note.Type == "" {
		note.Type = NoteTypeText
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	tags, err := json.Marshal(note.Tags)
	if err != nil {
		return Note{}, errors.NewStore("create", "notes", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, folder_id, tags, type, word_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.Title, note.Content, nullableString(note.FolderID),
		string(tags), string(note.Type), note.WordCount, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return Note{}, storeErr("create", "notes", err)
	}
	return note, nil
}

// UpdateNote overwrites a note's mutable fields and bumps UpdatedAt.
// Callers debounce edits; the store applies each write as-is.
func (s *Store) UpdateNote(ctx context.Context, note Note) error {
	note.UpdatedAt = time.Now().UnixMilli()
	tags, err := json.Marshal(note.Tags)
	if err != nil {
		return errors.NewStore("update", "notes", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, folder_id = ?, tags = ?, type = ?, word_count = ?, updated_at = ?
		 WHERE id = ?`,
		note.Title, note.Content, nullableString(note.FolderID), string(tags),
		string(note.Type), note.WordCount, note.UpdatedAt, note.ID)
	if err != nil {
		return storeErr("update", "notes", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("note", note.ID)
	}
	return nil
}

// GetNote returns a note by ID.
func (s *Store) GetNote(ctx context.Context, id string) (Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, folder_id, tags, type, word_count, created_at, updated_at
		 FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return Note{}, errors.NewNotFound("note", id)
	}
	if err != nil {
		return Note{}, storeErr("get", "notes", err)
	}
	return note, nil
}

// DeleteNote removes a note and cascades deletion of any linked
// voice-audio sub-records in the same transaction.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM voice_notes WHERE note_id = ?`, id); err != nil {
			return storeErr("delete", "voice_notes", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
			return storeErr("delete", "notes", err)
		}
		return nil
	})
}

// NotesByFolder lists notes in a folder (nil = root), most recently
// updated first.
func (s *Store) NotesByFolder(ctx context.Context, folderID *string) ([]Note, error) {
	query := `SELECT id, title, content, folder_id, tags, type, word_count, created_at, updated_at
		 FROM notes WHERE folder_id IS NULL ORDER BY updated_at DESC`
	args := []interface{}{}
	if folderID != nil {
		query = `SELECT id, title, content, folder_id, tags, type, word_count, created_at, updated_at
		 FROM notes WHERE folder_id = ? ORDER BY updated_at DESC`
		args = append(args, *folderID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query", "notes", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, storeErr("scan", "notes", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (Note, error) {
	var note Note
	var folderID sql.NullString
	var tags, noteType string
	if err := row.Scan(&note.ID, &note.Title, &note.Content, &folderID, &tags,
		&noteType, &note.WordCount, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return Note{}, err
	}
	note.FolderID = scanNullableString(folderID)
	note.Type = NoteType(noteType)
	if err := json.Unmarshal([]byte(tags), &note.Tags); err != nil {
		note.Tags = []string{}
	}
	return note, nil
}

// PutVoiceNote inserts or overwrites a voice-audio sub-record.
func (s *Store) PutVoiceNote(ctx context.Context, vn VoiceNote) (VoiceNote, error) {
	if vn.ID == "" {
		vn.ID = uuid.New().String()
		vn.CreatedAt = time.Now().UnixMilli()
	}
	if vn.TranscriptionStatus == "" {
		vn.TranscriptionStatus = TranscriptionPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voice_notes (id, note_id, audio, duration, transcription, transcription_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			audio = excluded.audio,
			duration = excluded.duration,
			transcription = excluded.transcription,
			transcription_status = excluded.transcription_status`,
		vn.ID, vn.NoteID, vn.Audio, vn.Duration, vn.Transcription,
		string(vn.TranscriptionStatus), vn.CreatedAt)
	if err != nil {
		return VoiceNote{}, storeErr("put", "voice_notes", err)
	}
	return vn, nil
}

// VoiceNotesByNote lists the voice-audio sub-records linked to a note.
func (s *Store) VoiceNotesByNote(ctx context.Context, noteID string) ([]VoiceNote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, note_id, audio, duration, transcription, transcription_status, created_at
		 FROM voice_notes WHERE note_id = ? ORDER BY created_at`, noteID)
	if err != nil {
		return nil, storeErr("query", "voice_notes", err)
	}
	defer rows.Close()

	var result []VoiceNote
	for rows.Next() {
		var vn VoiceNote
		var transcription sql.NullString
		var status string
		if err := rows.Scan(&vn.ID, &vn.NoteID, &vn.Audio, &vn.Duration,
			&transcription, &status, &vn.CreatedAt); err != nil {
			return nil, storeErr("scan", "voice_notes", err)
		}
		vn.Transcription = transcription.String
		vn.TranscriptionStatus = TranscriptionStatus(status)
		result = append(result, vn)
	}
	return result, rows.Err()
}
