package callconfig

import (
	"context"
	"errors"
	"fmt"
)

// Repository is the raw key-value contract for persisted slots.
// Implementations store opaque bytes; schema handling lives in Service.
type Repository interface {
	Put(ctx context.Context, slotID string, data []byte) error
	Get(ctx context.Context, slotID string) ([]byte, bool, error)
	Delete(ctx context.Context, slotID string) error
}

var (
	// ErrNothingToSave is returned when every field of the record is empty.
	ErrNothingToSave = errors.New("callconfig: nothing to save")
	// ErrNotFound is returned when a slot has no saved configuration.
	ErrNotFound = errors.New("callconfig: no saved configuration")
	// ErrInvalidRecord is returned when a stored slot cannot be parsed.
	// The caller's in-memory configuration must be left untouched.
	ErrInvalidRecord = errors.New("callconfig: stored configuration is not parseable")

	ErrInvalidArgument = errors.New("callconfig: invalid argument")
)

// Service owns save/load/clear semantics for call configurations,
// including the one-time migration of legacy-schema records.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save overwrites the slot with the full record. There is no partial merge.
// All-empty records are rejected with ErrNothingToSave.
func (s *Service) Save(ctx context.Context, slotID string, cfg CallConfiguration) error {
	if s.repo == nil {
		return errors.New("callconfig: repository not configured")
	}
	if slotID == "" {
		return ErrInvalidArgument
	}
	if !cfg.CallType.Valid() {
		return fmt.Errorf("%w: unknown call type %q", ErrInvalidArgument, cfg.CallType)
	}
	if cfg.IsEmpty() {
		return ErrNothingToSave
	}
	data, err := encodeRecord(cfg)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, slotID, data)
}

// Load reads the slot. Legacy-schema records are migrated and immediately
// re-saved so a subsequent read returns the current schema directly.
func (s *Service) Load(ctx context.Context, slotID string) (CallConfiguration, error) {
	if s.repo == nil {
		return CallConfiguration{}, errors.New("callconfig: repository not configured")
	}
	if slotID == "" {
		return CallConfiguration{}, ErrInvalidArgument
	}
	raw, ok, err := s.repo.Get(ctx, slotID)
	if err != nil {
		return CallConfiguration{}, err
	}
	if !ok {
		return CallConfiguration{}, ErrNotFound
	}
	cfg, migrated, err := decodeRecord(raw)
	if err != nil {
		return CallConfiguration{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if migrated {
		data, err := encodeRecord(cfg)
		if err != nil {
			return CallConfiguration{}, err
		}
		if err := s.repo.Put(ctx, slotID, data); err != nil {
			return CallConfiguration{}, err
		}
	}
	return cfg, nil
}

// Clear removes the slot. Clearing an absent slot is not an error.
func (s *Service) Clear(ctx context.Context, slotID string) error {
	if s.repo == nil {
		return errors.New("callconfig: repository not configured")
	}
	if slotID == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, slotID)
}
