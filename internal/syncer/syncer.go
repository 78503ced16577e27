package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"copytrade-scanner-go/internal/models"
	"copytrade-scanner-go/internal/source"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNoData is returned when the feed produced no usable candidates.
	// The catalog is never wiped without replacement data in hand, so this
	// always means the store was left untouched.
	ErrNoData = errors.New("source returned no usable candidates")

	// ErrSyncInFlight is returned when another sync run holds the guard.
	ErrSyncInFlight = errors.New("a sync run is already in flight")
)

// Result reports what a successful sync run wrote.
type Result struct {
	Written   int      `json:"written"`
	Dropped   int      `json:"dropped"`
	Nicknames []string `json:"nicknames"`
}

// Syncer replaces the stored trader catalog with the current feed contents.
//
// Each run is a full, stateless resynchronization: fetch, validate, then
// wipe and upsert inside a single transaction. Overlapping triggers are
// serialized by an in-process guard; the second caller gets ErrSyncInFlight
// instead of queueing. The guard is per-process — this service deploys as a
// single instance over an embedded store, which has no advisory locks to
// key a cross-instance lease on.
type Syncer struct {
	logger       *zap.Logger
	db           *gorm.DB
	adapter      source.Adapter
	fetchTimeout time.Duration
	storeTimeout time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// New creates a Syncer. Zero timeouts disable the corresponding bound.
func New(logger *zap.Logger, db *gorm.DB, adapter source.Adapter, fetchTimeout, storeTimeout time.Duration) *Syncer {
	return &Syncer{
		logger:       logger,
		db:           db,
		adapter:      adapter,
		fetchTimeout: fetchTimeout,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// Sync performs one full catalog replacement.
//
// Ordering is the load-bearing property: the adapter is called and its output
// validated before any store mutation, so a provider outage (failure, timeout
// or an empty feed) can never leave the catalog empty. Store-side, the wipe
// and the upsert run in one transaction; a failure rolls both back and the
// prior catalog survives intact.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInFlight
	}
	defer s.mu.Unlock()

	started := s.now()
	s.logger.Info("Starting catalog sync", zap.String("adapter", s.adapter.Name()))

	// Step 1: fetch. Nothing below may touch the store until this has
	// produced a non-empty candidate set.
	candidates, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	// Step 2: validate and normalize; invalid candidates are dropped, not fatal.
	records, dropped := s.normalize(candidates)
	if len(records) == 0 {
		s.logger.Error("All candidates failed validation, aborting before store mutation",
			zap.Int("dropped", dropped))
		return nil, fmt.Errorf("%w: %d candidates, none valid", ErrNoData, dropped)
	}

	// Steps 3+4: wipe and upsert as one atomic replacement.
	if err := s.replaceCatalog(ctx, records); err != nil {
		return nil, err
	}

	result := &Result{
		Written:   len(records),
		Dropped:   dropped,
		Nicknames: make([]string, 0, len(records)),
	}
	for _, r := range records {
		result.Nicknames = append(result.Nicknames, r.Nickname)
	}

	s.logger.Info("Catalog sync complete",
		zap.Int("written", result.Written),
		zap.Int("dropped", result.Dropped),
		zap.Duration("elapsed", s.now().Sub(started)),
	)
	return result, nil
}

func (s *Syncer) fetch(ctx context.Context) ([]models.RawCandidate, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	candidates, err := s.adapter.FetchCandidates(ctx)
	if err != nil {
		s.logger.Error("Source adapter failed", zap.String("adapter", s.adapter.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if len(candidates) == 0 {
		// An empty feed is a provider outage until proven otherwise, never
		// "nothing to update".
		s.logger.Error("Source adapter returned zero candidates", zap.String("adapter", s.adapter.Name()))
		return nil, fmt.Errorf("%w: empty feed", ErrNoData)
	}
	return candidates, nil
}

// normalize converts the raw batch into canonical records. Duplicate natural
// keys within one feed collapse to the last occurrence so the batch can never
// violate the store's uniqueness constraint.
func (s *Syncer) normalize(candidates []models.RawCandidate) ([]models.TraderRecord, int) {
	now := s.now().UTC()
	dropped := 0
	byKey := make(map[string]int, len(candidates))
	records := make([]models.TraderRecord, 0, len(candidates))

	for _, c := range candidates {
		record, err := c.Normalize(now)
		if err != nil {
			dropped++
			s.logger.Warn("Dropping invalid candidate",
				zap.String("exchange_uid", c.ExchangeUID),
				zap.String("nickname", c.Nickname),
				zap.Error(err),
			)
			continue
		}

		if i, seen := byKey[record.Key()]; seen {
			records[i] = record
			continue
		}
		byKey[record.Key()] = len(records)
		records = append(records, record)
	}

	return records, dropped
}

// replaceCatalog deletes every stored row and writes the new batch, upserting
// on the natural key, inside a single transaction.
func (s *Syncer) replaceCatalog(ctx context.Context, records []models.TraderRecord) error {
	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.TraderRecord{}).Error; err != nil {
			return fmt.Errorf("failed to wipe trader catalog: %w", err)
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "exchange_name"}, {Name: "exchange_uid"}},
			UpdateAll: true,
		}).Create(&records).Error
		if err != nil {
			return fmt.Errorf("failed to upsert trader batch: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Store write failed, transaction rolled back", zap.Error(err))
	}
	return err
}
