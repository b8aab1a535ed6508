package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/pisarna/internal/model"
)

// Dataset names. Each holds one JSON-encoded collection.
const (
	DatasetInventory  = "inventory"
	DatasetIssues     = "issues"
	DatasetEmployees  = "employees"
	DatasetCategories = "categories"
)

// Data is the full domain state: the four collections the engine operates on.
type Data struct {
	Inventory  []model.InventoryItem `json:"inventory"`
	Issues     []model.Issue         `json:"issues"`
	Employees  []model.Employee      `json:"employees"`
	Categories []string              `json:"categories"`
}

// LoadData loads all four collections. A missing dataset loads as an empty
// collection.
func LoadData(ctx context.Context, db *sql.DB) (*Data, error) {
	data := &Data{}

	if err := loadDataset(ctx, db, DatasetInventory, &data.Inventory); err != nil {
		return nil, err
	}
	if err := loadDataset(ctx, db, DatasetIssues, &data.Issues); err != nil {
		return nil, err
	}
	if err := loadDataset(ctx, db, DatasetEmployees, &data.Employees); err != nil {
		return nil, err
	}
	if err := loadDataset(ctx, db, DatasetCategories, &data.Categories); err != nil {
		return nil, err
	}

	return data, nil
}

// SaveData overwrites all four collections in a single transaction.
func SaveData(ctx context.Context, db *sql.DB, data *Data) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	sets := []struct {
		name  string
		value any
	}{
		{DatasetInventory, data.Inventory},
		{DatasetIssues, data.Issues},
		{DatasetEmployees, data.Employees},
		{DatasetCategories, data.Categories},
	}
	for _, set := range sets {
		if err := saveDataset(ctx, tx, set.name, set.value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing datasets: %w", err)
	}
	return nil
}

// WipeData removes all four collections. Users and settings are untouched.
func WipeData(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM datasets WHERE name IN (?, ?, ?, ?)`,
		DatasetInventory, DatasetIssues, DatasetEmployees, DatasetCategories,
	)
	if err != nil {
		return fmt.Errorf("wiping datasets: %w", err)
	}
	return nil
}

func loadDataset(ctx context.Context, db *sql.DB, name string, target any) error {
	var raw string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM datasets WHERE name = ?`, name,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading dataset %q: %w", name, err)
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("decoding dataset %q: %w", name, err)
	}
	return nil
}

func saveDataset(ctx context.Context, tx *sql.Tx, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding dataset %q: %w", name, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO datasets (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		name, string(raw),
	)
	if err != nil {
		return fmt.Errorf("saving dataset %q: %w", name, err)
	}
	return nil
}
