package storage

import (
	"encoding/json"
	"fmt"

	"PostCatalog/internal/domain"
)

// DefaultSnapshotKey names the single snapshot document in keyed backends.
const DefaultSnapshotKey = "default"

func encodeSnapshot(snapshot domain.CatalogSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snapshot.Normalize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (domain.CatalogSnapshot, error) {
	var snapshot domain.CatalogSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot.Normalize(), nil
}
