package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ Store = (*FirestoreStore)(nil)

type firestoreDocument struct {
	Date  string             `firestore:"date"`
	Base  string             `firestore:"base"`
	Rates map[string]float64 `firestore:"rates"`
}

// FirestoreStore keeps one Firestore document per record, the document ID is the record key
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(ctx context.Context, projectID, collection string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}

	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) Exists(ctx context.Context, key string) (bool, error) {
	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}

		return false, fmt.Errorf("get %s: %w", key, err)
	}

	return snap.Exists(), nil
}

// StaleKeys relies on the not-in operator, which accepts up to 10 values
func (s *FirestoreStore) StaleKeys(ctx context.Context, keepDates []string, limit int) ([]string, error) {
	query := s.client.Collection(s.collection).Query
	if len(keepDates) > 0 {
		query = query.Where("date", "not-in", keepDates)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query stale documents: %w", err)
	}

	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		keys = append(keys, doc.Ref.ID)
	}

	return keys, nil
}

// Commit runs the batch as one transaction
func (s *FirestoreStore) Commit(ctx context.Context, batch Batch) error {
	if batch.Empty() {
		return nil
	}

	coll := s.client.Collection(s.collection)
	if err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, doc := range batch.Sets {
			if err := tx.Set(coll.Doc(doc.Key), firestoreDocument{
				Date:  doc.Date,
				Base:  doc.Base,
				Rates: doc.Rates,
			}); err != nil {
				return fmt.Errorf("set %s: %w", doc.Key, err)
			}
		}

		for _, key := range batch.Deletes {
			if err := tx.Delete(coll.Doc(key)); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}

		return nil
	}); err != nil {
		return fmt.Errorf("run transaction: %w", err)
	}

	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
