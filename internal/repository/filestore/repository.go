package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/apperror"
	"github.com/mamadbah2/oilledger/internal/repository/store"
)

// partitionField lists the entities whose document is keyed by ISO date.
var partitionField = map[store.Entity]string{
	store.StockLog:    "date",
	store.DispatchLog: "date",
}

type record = map[string]any

// Repository implements store.Store on one JSON document per entity under dir.
// Dated entities are stored as {"YYYY-MM-DD": [records...]}, the others as a
// plain array. Every operation on an entity holds that entity's mutex for the
// whole read-modify-write, so writers inside one process never lose updates.
type Repository struct {
	dir    string
	logger *zap.Logger

	mu    sync.Mutex
	locks map[store.Entity]*sync.Mutex
}

// NewRepository prepares dir and returns a file backed store.
func NewRepository(dir string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, fmt.Errorf("file store directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create file store directory %s: %w", dir, err)
	}

	return &Repository{
		dir:    dir,
		logger: logger,
		locks:  make(map[store.Entity]*sync.Mutex),
	}, nil
}

// Find decodes every record matching filter into out.
func (r *Repository) Find(_ context.Context, entity store.Entity, filter store.Filter, out any) error {
	unlock := r.lock(entity)
	defer unlock()

	records, err := r.load(entity)
	if err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}

	matched, err := match(records, filter)
	if err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}
	if matched == nil {
		matched = []record{}
	}

	if err := decode(matched, out); err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}
	return nil
}

// FindOne decodes the first record matching filter into out.
func (r *Repository) FindOne(_ context.Context, entity store.Entity, filter store.Filter, out any) error {
	unlock := r.lock(entity)
	defer unlock()

	records, err := r.load(entity)
	if err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}

	matched, err := match(records, filter)
	if err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}
	if len(matched) == 0 {
		return apperror.NewNotFound(string(entity), map[string]any(filter))
	}

	if err := decode(matched[0], out); err != nil {
		return apperror.NewStore("find "+string(entity), err)
	}
	return nil
}

// Insert appends doc. The id must not exist yet.
func (r *Repository) Insert(_ context.Context, entity store.Entity, id any, doc any) error {
	unlock := r.lock(entity)
	defer unlock()

	records, err := r.load(entity)
	if err != nil {
		return apperror.NewStore("insert "+string(entity), err)
	}

	if _, idx, err := findByID(records, id); err != nil {
		return apperror.NewStore("insert "+string(entity), err)
	} else if idx >= 0 {
		return apperror.NewDuplicate(string(entity), id)
	}

	var rec record
	if err := decode(doc, &rec); err != nil {
		return apperror.NewStore("insert "+string(entity), err)
	}

	records = append(records, rec)
	if err := r.save(entity, records); err != nil {
		return apperror.NewStore("insert "+string(entity), err)
	}

	r.logger.Debug("record inserted", zap.String("entity", string(entity)), zap.Any("id", id))
	return nil
}

// Update merges fields into the record identified by id.
func (r *Repository) Update(_ context.Context, entity store.Entity, id any, fields store.Fields) error {
	unlock := r.lock(entity)
	defer unlock()

	records, err := r.load(entity)
	if err != nil {
		return apperror.NewStore("update "+string(entity), err)
	}

	rec, idx, err := findByID(records, id)
	if err != nil {
		return apperror.NewStore("update "+string(entity), err)
	}
	if idx < 0 {
		return apperror.NewNotFound(string(entity), id)
	}

	for key, value := range fields {
		normalized, err := normalize(value)
		if err != nil {
			return apperror.NewStore("update "+string(entity), err)
		}
		rec[key] = normalized
	}
	records[idx] = rec

	if err := r.save(entity, records); err != nil {
		return apperror.NewStore("update "+string(entity), err)
	}
	return nil
}

func (r *Repository) lock(entity store.Entity) func() {
	r.mu.Lock()
	m, ok := r.locks[entity]
	if !ok {
		m = &sync.Mutex{}
		r.locks[entity] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (r *Repository) path(entity store.Entity) string {
	return filepath.Join(r.dir, string(entity)+".json")
}

func (r *Repository) load(entity store.Entity) ([]record, error) {
	data, err := os.ReadFile(r.path(entity))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path(entity), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if _, dated := partitionField[entity]; !dated {
		var records []record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse %s: %w", r.path(entity), err)
		}
		return records, nil
	}

	var byDate map[string][]record
	if err := json.Unmarshal(data, &byDate); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path(entity), err)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var records []record
	for _, date := range dates {
		records = append(records, byDate[date]...)
	}
	return records, nil
}

func (r *Repository) save(entity store.Entity, records []record) error {
	var doc any = records
	if field, dated := partitionField[entity]; dated {
		byDate := make(map[string][]record)
		for _, rec := range records {
			key := fmt.Sprint(rec[field])
			byDate[key] = append(byDate[key], rec)
		}
		doc = byDate
	} else if records == nil {
		doc = []record{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", entity, err)
	}

	tmp, err := os.CreateTemp(r.dir, string(entity)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path(entity)); err != nil {
		return fmt.Errorf("replace %s: %w", r.path(entity), err)
	}
	return nil
}

func match(records []record, filter store.Filter) ([]record, error) {
	want := make(map[string]any, len(filter))
	for key, value := range filter {
		normalized, err := normalize(value)
		if err != nil {
			return nil, err
		}
		want[key] = normalized
	}

	var matched []record
	for _, rec := range records {
		ok := true
		for key, value := range want {
			if !reflect.DeepEqual(rec[key], value) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

func findByID(records []record, id any) (record, int, error) {
	want, err := normalize(id)
	if err != nil {
		return nil, -1, err
	}
	for i, rec := range records {
		if reflect.DeepEqual(rec[store.FieldID], want) {
			return rec, i, nil
		}
	}
	return nil, -1, nil
}

// normalize turns a Go value into the shape encoding/json produces when reading
// the file back, so filters compare like for like.
func normalize(value any) (any, error) {
	var out any
	if err := decode(value, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
