package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dossier/internal/adapters/driven/storage/vectorset"
	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
	"github.com/custodia-labs/dossier/internal/logger"
)

// IndexDir is the collection directory inside the data directory.
const IndexDir = "indexes"

// StaleLockAge is how old a collection lock file must be before a new
// writer may break it.
const StaleLockAge = 10 * time.Minute

const (
	indexExt = ".db"
	lockExt  = ".lock"
)

// Meta keys stored with every collection.
const (
	metaName        = "name"
	metaModel       = "embedding_model"
	metaDimensions  = "dimensions"
	metaCreatedAt   = "created_at"
	metaChunkCount  = "chunk_count"
	metaSourceCount = "source_count"
)

const indexSchema = `
CREATE TABLE meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE chunks (
    seq          INTEGER PRIMARY KEY,
    id           TEXT NOT NULL,
    position     INTEGER NOT NULL,
    text         TEXT NOT NULL,
    source       TEXT NOT NULL,
    title        TEXT NOT NULL,
    published_at TEXT NOT NULL,
    source_name  TEXT NOT NULL,
    company      TEXT NOT NULL,
    embedding    BLOB NOT NULL
);
`

var log = logger.Named("index")

// IndexStore implements driven.IndexStore with one SQLite file per collection.
type IndexStore struct {
	dir      string
	embedder driven.EmbeddingService

	mu      sync.Mutex
	writing map[string]struct{}
}

var _ driven.IndexStore = (*IndexStore)(nil)

// NewIndexStore creates an index store under dataDir/indexes.
func NewIndexStore(dataDir string, embedder driven.EmbeddingService) (*IndexStore, error) {
	if dataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	dir := filepath.Join(dataDir, IndexDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	return &IndexStore{
		dir:      dir,
		embedder: embedder,
		writing:  make(map[string]struct{}),
	}, nil
}

// Dir returns the directory holding collection files.
func (s *IndexStore) Dir() string {
	return s.dir
}

// Create embeds chunks and atomically replaces the collection file.
func (s *IndexStore) Create(ctx context.Context, name string, chunks []domain.Chunk) (*domain.CollectionInfo, error) {
	canonical, err := vectorset.ValidateName(name)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(canonical)
	if err != nil {
		return nil, err
	}
	defer release()

	set, err := vectorset.Build(ctx, s.embedder, canonical, chunks)
	if err != nil {
		return nil, err
	}

	final := s.indexPath(canonical)
	tmp := fmt.Sprintf("%s.%s.tmp", final, uuid.New().String())

	if err := writeCollection(ctx, tmp, set); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("replacing collection %q: %w", canonical, err)
	}

	info := set.Info()
	log.Debug("wrote %d chunks to %s", info.ChunkCount, final)
	return &info, nil
}

// Load reads a collection into an in-memory snapshot.
func (s *IndexStore) Load(ctx context.Context, name string) (driven.Collection, error) {
	canonical, err := vectorset.ValidateName(name)
	if err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	path := s.indexPath(canonical)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("collection %q: %w", canonical, domain.ErrIndexNotFound)
		}
		return nil, fmt.Errorf("stat collection %q: %w", canonical, err)
	}

	db, err := openIndex(path, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	info, err := readMeta(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", canonical, err)
	}
	if err := vectorset.CheckEmbedder(info, s.embedder.ModelName(), s.embedder.Dimensions()); err != nil {
		return nil, err
	}

	entries, err := readEntries(ctx, db, info.ChunkCount)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", canonical, err)
	}

	return vectorset.New(info, entries, s.embedder), nil
}

// List returns metadata for every collection file, sorted by name.
// Unreadable files are skipped with a warning.
func (s *IndexStore) List(ctx context.Context) ([]domain.CollectionInfo, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+indexExt))
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	infos := make([]domain.CollectionInfo, 0, len(paths))
	for _, path := range paths {
		info, err := readInfo(ctx, path)
		if err != nil {
			log.Warn("skipping %s: %v", filepath.Base(path), err)
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close is a no-op; collection files are opened per operation.
func (s *IndexStore) Close() error {
	return nil
}

func (s *IndexStore) indexPath(name string) string {
	return filepath.Join(s.dir, name+indexExt)
}

func (s *IndexStore) lockPath(name string) string {
	return filepath.Join(s.dir, name+lockExt)
}

// acquire takes the in-process and cross-process write locks for name.
func (s *IndexStore) acquire(name string) (func(), error) {
	s.mu.Lock()
	if _, busy := s.writing[name]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("collection %q: %w", name, domain.ErrWriteInProgress)
	}
	s.writing[name] = struct{}{}
	s.mu.Unlock()

	unmark := func() {
		s.mu.Lock()
		delete(s.writing, name)
		s.mu.Unlock()
	}

	lockPath := s.lockPath(name)
	if err := createLockFile(lockPath); err != nil {
		unmark()
		return nil, fmt.Errorf("collection %q: %w", name, err)
	}

	return func() {
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("removing lock %s: %v", lockPath, err)
		}
		unmark()
	}, nil
}

// createLockFile creates path exclusively, breaking it once if stale.
func createLockFile(path string) error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			return f.Close()
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("creating lock: %w", err)
		}

		st, statErr := os.Stat(path)
		if statErr != nil || time.Since(st.ModTime()) < StaleLockAge {
			return domain.ErrWriteInProgress
		}
		log.Warn("breaking stale lock %s", path)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale lock: %w", err)
		}
	}
	return domain.ErrWriteInProgress
}

func openIndex(path string, readOnly bool) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)"
	if readOnly {
		dsn += "&_pragma=query_only(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	// One connection keeps the pragmas on every statement.
	db.SetMaxOpenConns(1)
	return db, nil
}

// writeCollection writes set to a new file at path in one transaction.
func writeCollection(ctx context.Context, path string, set *vectorset.Set) error {
	db, err := openIndex(path, false)
	if err != nil {
		return err
	}

	if err := fillCollection(ctx, db, set); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing collection: %w", err)
	}
	return nil
}

func fillCollection(ctx context.Context, db *sql.DB, set *vectorset.Set) error {
	if _, err := db.ExecContext(ctx, indexSchema); err != nil {
		return fmt.Errorf("creating collection schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	info := set.Info()
	meta := map[string]string{
		metaName:        info.Name,
		metaModel:       info.EmbeddingModel,
		metaDimensions:  strconv.Itoa(info.Dimensions),
		metaCreatedAt:   formatTime(info.CreatedAt),
		metaChunkCount:  strconv.Itoa(info.ChunkCount),
		metaSourceCount: strconv.Itoa(info.SourceCount),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (seq, id, position, text, source, title, published_at, source_name, company, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range set.Entries() {
		m := e.Metadata
		if _, err := stmt.ExecContext(ctx, i, e.ID, e.Position, e.Text,
			m.Source, m.Title, m.PublishedAt, m.SourceName, m.Company,
			float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("writing chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collection: %w", err)
	}
	return nil
}

func readInfo(ctx context.Context, path string) (domain.CollectionInfo, error) {
	db, err := openIndex(path, true)
	if err != nil {
		return domain.CollectionInfo{}, err
	}
	defer db.Close()
	return readMeta(ctx, db)
}

func readMeta(ctx context.Context, db *sql.DB) (domain.CollectionInfo, error) {
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("reading meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return domain.CollectionInfo{}, fmt.Errorf("scanning meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("iterating meta: %w", err)
	}
	if strings.TrimSpace(meta[metaName]) == "" {
		return domain.CollectionInfo{}, errors.New("missing collection name in meta")
	}

	info := domain.CollectionInfo{
		Name:           meta[metaName],
		EmbeddingModel: meta[metaModel],
		CreatedAt:      parseTime(meta[metaCreatedAt]),
	}
	for key, dst := range map[string]*int{
		metaDimensions:  &info.Dimensions,
		metaChunkCount:  &info.ChunkCount,
		metaSourceCount: &info.SourceCount,
	} {
		n, err := strconv.Atoi(meta[key])
		if err != nil || n < 0 {
			return domain.CollectionInfo{}, fmt.Errorf("invalid %s in meta: %q", key, meta[key])
		}
		*dst = n
	}
	return info, nil
}

func readEntries(ctx context.Context, db *sql.DB, sizeHint int) ([]domain.EmbeddedChunk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, position, text, source, title, published_at, source_name, company, embedding
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.EmbeddedChunk, 0, sizeHint)
	for rows.Next() {
		var e domain.EmbeddedChunk
		var blob []byte
		m := &e.Metadata
		if err := rows.Scan(&e.ID, &e.Position, &e.Text,
			&m.Source, &m.Title, &m.PublishedAt, &m.SourceName, &m.Company, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		e.Vector = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return entries, nil
}
