// Package store defines the persistence collaborators of the engine: a store
// of energy price models and a store of calculation results.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// StoredModel is a price evolution model with the time it was computed.
type StoredModel struct {
	Model     energyprice.Model `json:"model"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ModelStore persists one price evolution model per energy type.
type ModelStore interface {
	LoadModel(ctx context.Context, e energy.Type) (StoredModel, error)
	SaveModel(ctx context.Context, m StoredModel) error
	ListModels(ctx context.Context) ([]StoredModel, error)
}

// ResultRecord is one persisted calculation.
type ResultRecord struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"projectId"`
	CreatedAt time.Time           `json:"createdAt"`
	Results   *projection.Results `json:"results"`
}

// ResultStore persists calculation results verbatim.
type ResultStore interface {
	SaveResults(ctx context.Context, results *projection.Results) (ResultRecord, error)
	LatestResults(ctx context.Context, projectID string) (ResultRecord, error)
}

// EncodeResults serializes results for persistence.
func EncodeResults(results *projection.Results) ([]byte, error) {
	if results == nil {
		return nil, errors.New("store: nil results")
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return payload, nil
}

// DecodeResults restores persisted results.
func DecodeResults(payload []byte) (*projection.Results, error) {
	var results projection.Results
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return &results, nil
}
