package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/patrickudo2004/parchments/core/errors"
)

// CreateFolder inserts a new folder, assigning its ID and timestamps.
func (s *Store) CreateFolder(ctx context.Context, folder Folder) (Folder, error) {
	folder.ID = uuid.New().String()
	now := time.Now().UnixMilli()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, parent_id, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.Name, nullableString(folder.ParentID),
		folder.Order, folder.CreatedAt, folder.UpdatedAt)
	if err != nil {
		return Folder{}, storeErr("create", "folders", err)
	}
	return folder, nil
}

// UpdateFolder renames, reorders or reparents a folder.
func (s *Store) UpdateFolder(ctx context.Context, folder Folder) error {
	folder.UpdatedAt = time.Now().UnixMilli()
	res, err := s.db.ExecContext(ctx,
		`UPDATE folders SET name = ?, parent_id = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		folder.Name, nullableString(folder.ParentID), folder.Order, folder.UpdatedAt, folder.ID)
	if err != nil {
		return storeErr("update", "folders", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("folder", folder.ID)
	}
	return nil
}

// GetFolder returns a folder by ID.
func (s *Store) GetFolder(ctx context.Context, id string) (Folder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, parent_id, sort_order, created_at, updated_at FROM folders WHERE id = ?`, id)
	folder, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return Folder{}, errors.NewNotFound("folder", id)
	}
	if err != nil {
		return Folder{}, storeErr("get", "folders", err)
	}
	return folder, nil
}

// DeleteFolder removes a folder without losing user content: child notes
// are reparented to root and child folders to the deleted folder's
// parent. Notes are never cascade-deleted with their folder.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	folder, err := s.GetFolder(ctx, id)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE notes SET folder_id = NULL WHERE folder_id = ?`, id); err != nil {
			return storeErr("reparent", "notes", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE folders SET parent_id = ? WHERE parent_id = ?`,
			nullableString(folder.ParentID), id); err != nil {
			return storeErr("reparent", "folders", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
			return storeErr("delete", "folders", err)
		}
		return nil
	})
}

// FoldersByParent lists the immediate children of a folder (nil = root),
// sorted by their manual order.
func (s *Store) FoldersByParent(ctx context.Context, parentID *string) ([]Folder, error) {
	query := `SELECT id, name, parent_id, sort_order, created_at, updated_at
		 FROM folders WHERE parent_id IS NULL ORDER BY sort_order, name`
	args := []interface{}{}
	if parentID != nil {
		query = `SELECT id, name, parent_id, sort_order, created_at, updated_at
		 FROM folders WHERE parent_id = ? ORDER BY sort_order, name`
		args = append(args, *parentID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query", "folders", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, storeErr("scan", "folders", err)
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

// FolderNode is one node of the materialized folder tree.
type FolderNode struct {
	Folder
	Children []*FolderNode `json:"children,omitempty"`
}

// FolderTree materializes the full folder hierarchy. Folders are stored
// flat by ID with weak parent references, so a manually corrupted
// parent_id could form a cycle; traversal tracks visited IDs and treats
// any folder that would close a cycle as a root instead of recursing
// forever.
func (s *Store) FolderTree(ctx context.Context) ([]*FolderNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, parent_id, sort_order, created_at, updated_at
		 FROM folders ORDER BY sort_order, name`)
	if err != nil {
		return nil, storeErr("query", "folders", err)
	}
	defer rows.Close()

	byID := make(map[string]*FolderNode)
	var ordered []*FolderNode
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, storeErr("scan", "folders", err)
		}
		node := &FolderNode{Folder: folder}
		byID[folder.ID] = node
		ordered = append(ordered, node)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("scan", "folders", err)
	}

	var roots []*FolderNode
	for _, node := range ordered {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[*node.ParentID]
		if !ok || reachable(byID, node.ID, *node.ParentID) {
			// Dangling or cyclic parent reference: surface at root.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return roots, nil
}

// reachable reports whether from can be reached by walking parent links
// starting at start.
func reachable(byID map[string]*FolderNode, from, start string) bool {
	seen := make(map[string]bool)
	current := start
	for {
		if current == from {
			return true
		}
		if seen[current] {
			return false
		}
		seen[current] = true
		node, ok := byID[current]
		if !ok || node.ParentID == nil {
			return false
		}
		current = *node.ParentID
	}
}

func scanFolder(row rowScanner) (Folder, error) {
	var folder Folder
	var parentID sql.NullString
	if err := row.Scan(&folder.ID, &folder.Name, &parentID, &folder.Order,
		&folder.CreatedAt, &folder.UpdatedAt); err != nil {
		return Folder{}, err
	}
	folder.ParentID = scanNullableString(parentID)
	return folder, nil
}
