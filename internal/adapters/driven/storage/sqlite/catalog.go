package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
)

// catalog implements driven.Catalog.
type catalog struct {
	store *Store
}

var _ driven.Catalog = (*catalog)(nil)

// fileColumns selects a file row with its derived chunk count.
const fileColumns = `
	f.id, f.filename, f.original_name, f.file_type, f.mime_type, f.file_size,
	f.upload_date, f.category, f.description, f.tags, f.storage_path, f.checksum,
	(SELECT COUNT(*) FROM chunks c WHERE c.file_id = f.id) AS chunk_count`

func catalogErr(op string, err error) error {
	return &domain.CatalogError{Op: op, Err: err}
}

// InsertFile stores a file record and its chunks in one transaction.
func (c *catalog) InsertFile(ctx context.Context, rec *domain.FileRecord, chunks []domain.ChunkInput) (string, error) {
	if rec == nil {
		return "", domain.ErrInvalidInput
	}
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	tags, err := encodeTags(rec.Tags)
	if err != nil {
		return "", catalogErr("insert file", err)
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", catalogErr("insert file", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var taken int
	err = tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM files WHERE id = ?) + (SELECT COUNT(*) FROM deleted_files WHERE id = ?)
	`, id, id).Scan(&taken)
	if err != nil {
		return "", catalogErr("insert file", err)
	}
	if taken > 0 {
		return "", fmt.Errorf("file %s: %w", id, domain.ErrDuplicate)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (id, filename, original_name, file_type, mime_type, file_size,
			upload_date, category, description, tags, storage_path, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, rec.Filename, rec.OriginalName, rec.FileType, rec.MIMEType, rec.FileSize,
		rec.UploadDate.UTC().UnixNano(), rec.Category, rec.Description, tags, rec.StoragePath, rec.Checksum)
	if err != nil {
		return "", catalogErr("insert file", err)
	}

	if err := insertChunks(ctx, tx, id, 0, chunks); err != nil {
		return "", catalogErr("insert file", err)
	}

	if err := tx.Commit(); err != nil {
		return "", catalogErr("insert file", err)
	}
	return id, nil
}

// InsertChunks appends chunks after the file's current last index.
func (c *catalog) InsertChunks(ctx context.Context, fileID string, chunks []domain.ChunkInput) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return catalogErr("insert chunks", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE id = ?", fileID).Scan(&exists); err != nil {
		return catalogErr("insert chunks", err)
	}
	if exists == 0 {
		return fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(chunk_index), -1) + 1 FROM chunks WHERE file_id = ?", fileID).Scan(&next)
	if err != nil {
		return catalogErr("insert chunks", err)
	}

	if err := insertChunks(ctx, tx, fileID, next, chunks); err != nil {
		return catalogErr("insert chunks", err)
	}
	if err := tx.Commit(); err != nil {
		return catalogErr("insert chunks", err)
	}
	return nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, fileID string, start int, chunks []domain.ChunkInput) error {
	if len(chunks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (file_id, chunk_index, chunk_id, text, char_offset)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, fileID, start+i, uuid.New().String(), chunk.Text, chunk.Offset); err != nil {
			return fmt.Errorf("saving chunk %d: %w", start+i, err)
		}
	}
	return nil
}

// GetFile retrieves a file record with its chunk count.
func (c *catalog) GetFile(ctx context.Context, id string) (*domain.FileRecord, error) {
	row := c.store.db.QueryRowContext(ctx, "SELECT"+fileColumns+" FROM files f WHERE f.id = ?", id)

	rec, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, catalogErr("get file", err)
	}
	return rec, nil
}

// GetChunk retrieves one chunk of a file by index.
func (c *catalog) GetChunk(ctx context.Context, fileID string, index int) (*domain.ChunkRecord, error) {
	var chunk domain.ChunkRecord
	err := c.store.db.QueryRowContext(ctx, `
		SELECT chunk_id, file_id, chunk_index, text, char_offset
		FROM chunks WHERE file_id = ? AND chunk_index = ?
	`, fileID, index).Scan(&chunk.ID, &chunk.FileID, &chunk.Index, &chunk.Text, &chunk.Offset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chunk %d of file %s: %w", index, fileID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, catalogErr("get chunk", err)
	}
	return &chunk, nil
}

// ListChunks returns all chunks of a file ordered by index.
func (c *catalog) ListChunks(ctx context.Context, fileID string) ([]domain.ChunkRecord, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT chunk_id, file_id, chunk_index, text, char_offset
		FROM chunks WHERE file_id = ?
		ORDER BY chunk_index
	`, fileID)
	if err != nil {
		return nil, catalogErr("list chunks", err)
	}
	defer rows.Close()

	var chunks []domain.ChunkRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.ChunkRecord
		if err := rows.Scan(&chunk.ID, &chunk.FileID, &chunk.Index, &chunk.Text, &chunk.Offset); err != nil {
			return nil, catalogErr("list chunks", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("list chunks", err)
	}
	return chunks, nil
}

// ListFiles returns files, most recent upload first.
func (c *catalog) ListFiles(ctx context.Context, category string) ([]domain.FileRecord, error) {
	rows, err := c.store.db.QueryContext(ctx, "SELECT"+fileColumns+`
		FROM files f
		WHERE (? = '' OR f.category = ?)
		ORDER BY f.upload_date DESC, f.id
	`, category, category)
	if err != nil {
		return nil, catalogErr("list files", err)
	}
	defer rows.Close()

	files := []domain.FileRecord{}
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, catalogErr("list files", err)
		}
		files = append(files, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("list files", err)
	}
	return files, nil
}

// containsAll builds a predicate that is true when expr contains every term.
func containsAll(expr string, terms []string) (string, []any) {
	parts := make([]string, len(terms))
	args := make([]any, len(terms))
	for i, term := range terms {
		parts[i] = "instr(" + foldFunc + "(" + expr + "), ?) > 0"
		args[i] = term
	}
	return "(" + strings.Join(parts, " AND ") + ")", args
}

// tagsText flattens the JSON tag array into one space separated string.
const tagsText = "COALESCE((SELECT group_concat(value, ' ') FROM json_each(f.tags)), '')"

// SearchText returns the raw per-file matches for query.
func (c *catalog) SearchText(ctx context.Context, query, category string) ([]domain.TextMatch, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []domain.TextMatch{}, nil
	}

	nameCond, nameArgs := containsAll("f.filename", terms)
	origCond, origArgs := containsAll("f.original_name", terms)
	descCond, descArgs := containsAll("f.description", terms)
	tagsCond, tagsArgs := containsAll(tagsText, terms)
	chunkCond, chunkArgs := containsAll("c.text", terms)

	// Both queries read one snapshot so chunk matches agree with file rows.
	tx, err := c.store.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, catalogErr("search", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Chunk matches first; files matching only through chunks are picked up below.
	chunkQuery := `
		SELECT c.file_id, c.chunk_index, c.text
		FROM chunks c JOIN files f ON f.id = c.file_id
		WHERE (? = '' OR f.category = ?) AND ` + chunkCond + `
		ORDER BY c.file_id, c.chunk_index`
	args := append([]any{category, category}, chunkArgs...)
	rows, err := tx.QueryContext(ctx, chunkQuery, args...)
	if err != nil {
		return nil, catalogErr("search", err)
	}
	type chunkHits struct {
		indices []int
		texts   []string
	}
	byFile := make(map[string]*chunkHits)
	for rows.Next() {
		var fileID, text string
		var index int
		if err := rows.Scan(&fileID, &index, &text); err != nil {
			rows.Close()
			return nil, catalogErr("search", err)
		}
		h := byFile[fileID]
		if h == nil {
			h = &chunkHits{}
			byFile[fileID] = h
		}
		h.indices = append(h.indices, index)
		h.texts = append(h.texts, text)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, catalogErr("search", err)
	}
	rows.Close()

	fileQuery := "SELECT" + fileColumns + `,
			(` + nameCond + ` OR ` + origCond + `) AS m_name,
			` + descCond + ` AS m_desc,
			` + tagsCond + ` AS m_tags
		FROM files f
		WHERE (? = '' OR f.category = ?)
		ORDER BY f.upload_date DESC, f.id`
	args = nil
	args = append(args, nameArgs...)
	args = append(args, origArgs...)
	args = append(args, descArgs...)
	args = append(args, tagsArgs...)
	args = append(args, category, category)

	rows, err = tx.QueryContext(ctx, fileQuery, args...)
	if err != nil {
		return nil, catalogErr("search", err)
	}
	defer rows.Close()

	matches := []domain.TextMatch{}
	for rows.Next() {
		var mName, mDesc, mTags bool
		rec, err := scanFile(rows, &mName, &mDesc, &mTags)
		if err != nil {
			return nil, catalogErr("search", err)
		}

		var fields []string
		if mName {
			fields = append(fields, domain.FieldFilename)
		}
		if mDesc {
			fields = append(fields, domain.FieldDescription)
		}
		if mTags {
			fields = append(fields, domain.FieldTags)
		}
		hits := byFile[rec.ID]
		if len(fields) == 0 && hits == nil {
			continue
		}

		m := domain.TextMatch{File: *rec, Fields: fields}
		if hits != nil {
			m.ChunkIndices = hits.indices
			m.ChunkTexts = hits.texts
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("search", err)
	}
	return matches, nil
}

// UpdateFileMetadata changes category, description or tags.
func (c *catalog) UpdateFileMetadata(ctx context.Context, id string, update domain.MetadataUpdate) error {
	var sets []string
	var args []any
	if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *update.Category)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Tags != nil {
		tags, err := encodeTags(*update.Tags)
		if err != nil {
			return catalogErr("update file", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}

	if len(sets) == 0 {
		_, err := c.GetFile(ctx, id)
		return err
	}

	args = append(args, id)
	res, err := c.store.db.ExecContext(ctx,
		"UPDATE files SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return catalogErr("update file", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return catalogErr("update file", err)
	}
	if n == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteFile removes a file and its chunks and tombstones the id.
func (c *catalog) DeleteFile(ctx context.Context, id string) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return catalogErr("delete file", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return catalogErr("delete file", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return catalogErr("delete file", err)
	}
	if n == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO deleted_files (id, deleted_at) VALUES (?, ?)", id, time.Now().UTC().UnixNano())
	if err != nil {
		return catalogErr("delete file", err)
	}

	if err := tx.Commit(); err != nil {
		return catalogErr("delete file", err)
	}
	return nil
}

// AggregateStats summarises the catalog with SQL aggregates.
func (c *catalog) AggregateStats(ctx context.Context) (*domain.AggregateStats, error) {
	stats := &domain.AggregateStats{
		CountsByType:     map[string]int{},
		CountsByCategory: map[string]int{},
	}

	err := c.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(file_size), 0), (SELECT COUNT(*) FROM chunks)
		FROM files
	`).Scan(&stats.TotalFiles, &stats.TotalSize, &stats.TotalChunks)
	if err != nil {
		return nil, catalogErr("stats", err)
	}

	if err := c.countBy(ctx, "file_type", stats.CountsByType); err != nil {
		return nil, err
	}
	if err := c.countBy(ctx, "category", stats.CountsByCategory); err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy fills counts grouped by a fixed column name.
func (c *catalog) countBy(ctx context.Context, column string, counts map[string]int) error {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) FROM files GROUP BY "+column)
	if err != nil {
		return catalogErr("stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return catalogErr("stats", err)
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return catalogErr("stats", err)
	}
	return nil
}

// Close closes the underlying store.
func (c *catalog) Close() error {
	return c.store.Close()
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanFile scans fileColumns followed by any extra destinations.
func scanFile(row scanner, extra ...any) (*domain.FileRecord, error) {
	var rec domain.FileRecord
	var uploaded int64
	var tags string

	dest := []any{
		&rec.ID, &rec.Filename, &rec.OriginalName, &rec.FileType, &rec.MIMEType, &rec.FileSize,
		&uploaded, &rec.Category, &rec.Description, &tags, &rec.StoragePath, &rec.Checksum,
		&rec.ChunkCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	rec.UploadDate = time.Unix(0, uploaded).UTC()
	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return &rec, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}
