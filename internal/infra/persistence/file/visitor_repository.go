// Package file stores visitor credentials in a JSON file, for the CLI.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type record struct {
	SealedToken   []byte    `json:"sealedToken"`
	SealedCookies []byte    `json:"sealedCookies"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type visitorRepository struct {
	mu   sync.Mutex
	path string
}

// NewVisitorRepository stores records in path, creating parent directories on first save.
func NewVisitorRepository(path string) repository.VisitorRepository {
	return &visitorRepository{path: path}
}

func (r *visitorRepository) load() (map[uuid.UUID]record, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[uuid.UUID]record{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read visitor file")
	}

	records := map[uuid.UUID]record{}
	if len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "decode visitor file")
	}

	return records, nil
}

// store writes through a temp file so a crash never leaves a truncated file.
func (r *visitorRepository) store(records map[uuid.UUID]record) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "create visitor dir")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "write visitor file")
	}

	return errors.Wrap(os.Rename(tmp, r.path), "replace visitor file")
}

func (r *visitorRepository) Save(_ context.Context, creds *entity.VisitorCredentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	creds.UpdatedAt = time.Now()
	records[creds.VisitorID] = record{
		SealedToken:   creds.SealedToken,
		SealedCookies: creds.SealedCookies,
		UpdatedAt:     creds.UpdatedAt,
	}

	return r.store(records)
}

func (r *visitorRepository) Find(_ context.Context, visitorID uuid.UUID) (*entity.VisitorCredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	rec, ok := records[visitorID]
	if !ok {
		return nil, repository.ErrVisitorNotFound
	}

	return &entity.VisitorCredentials{
		VisitorID:     visitorID,
		SealedToken:   rec.SealedToken,
		SealedCookies: rec.SealedCookies,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}

func (r *visitorRepository) Delete(_ context.Context, visitorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := records[visitorID]; !ok {
		return nil
	}
	delete(records, visitorID)

	return r.store(records)
}

func (r *visitorRepository) DeleteIdle(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return 0, err
	}

	var removed int64
	for id, rec := range records {
		if rec.UpdatedAt.Before(before) {
			delete(records, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	return removed, r.store(records)
}
