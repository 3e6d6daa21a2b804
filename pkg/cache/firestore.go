package cache

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IconRecord is the registry entry for one player package: its icon already
// encoded as PNG+base64 text.
type IconRecord struct {
	PackageName string    `firestore:"packageName" json:"packageName"`
	Base64Icon  string    `firestore:"base64Icon" json:"base64Icon"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// FirestoreConfig holds configuration for the icon registry collection.
type FirestoreConfig struct {
	ProjectID      string
	CollectionName string
}

// FirestoreSource is the source of truth for package icons: one document per
// package name. Caches pull from it on a miss.
type FirestoreSource struct {
	client         *firestore.Client
	collectionName string
	logger         zerolog.Logger
}

// NewFirestoreSource creates a source on an injected client.
func NewFirestoreSource(
	cfg *FirestoreConfig,
	client *firestore.Client,
	logger zerolog.Logger,
) (*FirestoreSource, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}
	if cfg.CollectionName == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	logger.Info().Str("project_id", cfg.ProjectID).Str("collection", cfg.CollectionName).Msg("FirestoreSource initialized.")

	return &FirestoreSource{
		client:         client,
		collectionName: cfg.CollectionName,
		logger:         logger.With().Str("component", "FirestoreSource").Logger(),
	}, nil
}

// Fetch retrieves the icon record for packageName.
func (s *FirestoreSource) Fetch(ctx context.Context, packageName string) (IconRecord, error) {
	docSnap, err := s.client.Collection(s.collectionName).Doc(packageName).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			s.logger.Debug().Str("package", packageName).Msg("No icon registered for package.")
			return IconRecord{}, fmt.Errorf("icon for %s: %w", packageName, ErrNotFound)
		}
		s.logger.Error().Err(err).Str("package", packageName).Msg("Failed to get icon document from Firestore.")
		return IconRecord{}, fmt.Errorf("firestore get for %s: %w", packageName, err)
	}

	var record IconRecord
	if err := docSnap.DataTo(&record); err != nil {
		return IconRecord{}, fmt.Errorf("firestore DataTo for %s: %w", packageName, err)
	}
	if record.PackageName == "" {
		record.PackageName = packageName
	}
	return record, nil
}

// Write registers or replaces the icon for packageName.
func (s *FirestoreSource) Write(ctx context.Context, packageName string, record IconRecord) error {
	record.PackageName = packageName
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	if _, err := s.client.Collection(s.collectionName).Doc(packageName).Set(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("package", packageName).Msg("Failed to write icon document to Firestore.")
		return fmt.Errorf("firestore set for %s: %w", packageName, err)
	}
	return nil
}

// Invalidate deletes the registry entry.
func (s *FirestoreSource) Invalidate(ctx context.Context, packageName string) error {
	if _, err := s.client.Collection(s.collectionName).Doc(packageName).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete for %s: %w", packageName, err)
	}
	return nil
}

// Close is a no-op as the Firestore client's lifecycle is managed externally.
func (s *FirestoreSource) Close() error {
	return nil
}
