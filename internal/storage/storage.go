// Package storage archives daily insight snapshots so trend and
// benchmark reports can reach further back than the rollup retention
// window. DynamoDB backs production; local JSON files back development.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ignite/outreach-analytics/internal/config"
	"github.com/ignite/outreach-analytics/internal/domain"
)

// Store provides persistent snapshot archive storage
type Store struct {
	cfg config.ArchiveConfig
	mu  sync.Mutex

	// DynamoDB backend (nil in local mode)
	dynamo *DynamoArchive
}

// New creates a snapshot archive for the configured backend.
func New(ctx context.Context, cfg config.ArchiveConfig) (*Store, error) {
	s := &Store{cfg: cfg}

	switch cfg.Type {
	case "dynamodb":
		dynamo, err := NewDynamoArchive(ctx, cfg.DynamoDBTable, cfg.AWSRegion, cfg.GetAWSProfile(), cfg.RetentionDays)
		if err != nil {
			return nil, fmt.Errorf("initializing DynamoDB archive: %w", err)
		}
		s.dynamo = dynamo
	case "local":
		if err := os.MkdirAll(filepath.Join(cfg.LocalPath, "snapshots"), 0755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}

	return s, nil
}

// SaveSnapshot archives one daily snapshot. Writing the same org,
// kind, and date again replaces the earlier snapshot, so reruns of
// the archiver are safe.
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.InsightSnapshot) error {
	if s.dynamo != nil {
		return s.dynamo.SaveSnapshot(ctx, snap)
	}
	return s.saveLocal(snap)
}

// ListSnapshots returns archived snapshots for one organization and
// kind across an inclusive date range, oldest first.
func (s *Store) ListSnapshots(ctx context.Context, orgID string, kind domain.EntityKind, from, to string) ([]domain.InsightSnapshot, error) {
	if s.dynamo != nil {
		return s.dynamo.ListSnapshots(ctx, orgID, kind, from, to)
	}
	return s.listLocal(orgID, kind, from, to)
}

func (s *Store) localPath(orgID string, kind domain.EntityKind) string {
	// Sanitize tenant input before it becomes a filename
	name := fmt.Sprintf("%s_%s.json", filepath.Base(orgID), kind)
	return filepath.Join(s.cfg.LocalPath, "snapshots", name)
}

func (s *Store) saveLocal(snap domain.InsightSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.localPath(snap.OrganizationID, snap.Kind)

	var snaps []domain.InsightSnapshot
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &snaps)
	}

	replaced := false
	for i, existing := range snaps {
		if existing.Date == snap.Date {
			snaps[i] = snap
			replaced = true
			break
		}
	}
	if !replaced {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date < snaps[j].Date })

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snaps)
}

func (s *Store) listLocal(orgID string, kind domain.EntityKind, from, to string) ([]domain.InsightSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.localPath(orgID, kind))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snaps []domain.InsightSnapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("parsing snapshot file: %w", err)
	}

	var out []domain.InsightSnapshot
	for _, snap := range snaps {
		if snap.Date >= from && snap.Date <= to {
			out = append(out, snap)
		}
	}
	return out, nil
}
