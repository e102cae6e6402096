package repository

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/joseph-ayodele/cropcatalog/internal/common"
	"github.com/joseph-ayodele/cropcatalog/internal/persist"
)

const defaultCollection = "catalog_entries"

// FirestoreStore writes each entry as a new document in one collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
}

func NewFirestoreStore(ctx context.Context, projectID, collection string, logger *slog.Logger) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: firestore project is required", common.ErrInvalidInput)
	}
	if collection == "" {
		collection = defaultCollection
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: firestore client: %w", common.ErrDatabase, err)
	}
	return &FirestoreStore{
		client:     client,
		collection: collection,
		logger:     logger.With("store", "firestore", "collection", collection),
	}, nil
}

func (s *FirestoreStore) Save(ctx context.Context, e persist.CatalogEntry) (string, error) {
	ref := s.client.Collection(s.collection).NewDoc()
	if _, err := ref.Create(ctx, e); err != nil {
		s.logger.Error("store.save.failed", "name", e.Name, "error", err)
		return "", fmt.Errorf("%w: create document: %w", common.ErrDatabase, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
