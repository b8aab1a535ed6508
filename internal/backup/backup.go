// Package backup implements the export/import document format: a JSON object
// with the four domain collections at the top level, optionally wrapped with
// export metadata.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erazemk/pisarna/internal/engine"
	"github.com/erazemk/pisarna/internal/model"
	"github.com/erazemk/pisarna/internal/store"
)

// FormatVersion identifies the export document layout.
const FormatVersion = "1.0.0"

// Metadata describes an export for humans and sanity checks. It is ignored on
// import.
type Metadata struct {
	Version         string `json:"version"`
	ExportDate      string `json:"exportDate"`
	TotalItems      int    `json:"totalItems"`
	TotalIssues     int    `json:"totalIssues"`
	TotalEmployees  int    `json:"totalEmployees"`
	TotalCategories int    `json:"totalCategories"`
}

// Document is the on-disk export shape.
type Document struct {
	Inventory      []model.InventoryItem `json:"inventory"`
	Issues         []model.Issue         `json:"issues"`
	Employees      []model.Employee      `json:"employees"`
	Categories     []string              `json:"categories"`
	ExportMetadata *Metadata             `json:"exportMetadata,omitempty"`
}

// Export wraps the current collections into a document with metadata.
// Nil collections are normalized to empty arrays so the JSON never contains
// null where a consumer expects a list.
func Export(data *store.Data, now time.Time) *Document {
	doc := &Document{
		Inventory:  data.Inventory,
		Issues:     data.Issues,
		Employees:  data.Employees,
		Categories: data.Categories,
		ExportMetadata: &Metadata{
			Version:         FormatVersion,
			ExportDate:      now.UTC().Format(time.RFC3339),
			TotalItems:      len(data.Inventory),
			TotalIssues:     len(data.Issues),
			TotalEmployees:  len(data.Employees),
			TotalCategories: len(data.Categories),
		},
	}
	if doc.Inventory == nil {
		doc.Inventory = []model.InventoryItem{}
	}
	if doc.Issues == nil {
		doc.Issues = []model.Issue{}
	}
	if doc.Employees == nil {
		doc.Employees = []model.Employee{}
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	return doc
}

// Import parses and validates an export document. Structure is checked first
// (all four collections present and well-formed, spot-checking the first
// record of each), then the engine invariants: a document carrying negative
// stock, empty issue lines or signature-less issued issues is rejected as a
// whole, never partially accepted.
func Import(raw []byte) (*store.Data, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("not a valid JSON object: %w", err)
	}

	for _, key := range []string{"inventory", "issues", "employees", "categories"} {
		if _, ok := top[key]; !ok {
			return nil, fmt.Errorf("missing required property: %s", key)
		}
	}

	if err := checkFirstRecord(top["inventory"], "inventory",
		[]string{"id", "name", "category", "stockQuantity", "unit", "threshold"}); err != nil {
		return nil, err
	}
	if err := checkFirstRecord(top["employees"], "employees",
		[]string{"id", "name", "department"}); err != nil {
		return nil, err
	}
	if err := checkFirstRecord(top["issues"], "issues",
		[]string{"id", "employeeId", "employeeName", "department", "items", "issueDate", "status"}); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	if err := engine.ValidateState(doc.Inventory, doc.Issues); err != nil {
		return nil, fmt.Errorf("document violates data invariants: %w", err)
	}

	return &store.Data{
		Inventory:  doc.Inventory,
		Issues:     doc.Issues,
		Employees:  doc.Employees,
		Categories: doc.Categories,
	}, nil
}

// checkFirstRecord verifies the collection is an array and, if non-empty,
// that its first record carries the required fields.
func checkFirstRecord(raw json.RawMessage, name string, fields []string) error {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("%s is not a valid array: %w", name, err)
	}
	if len(records) == 0 {
		return nil
	}

	for _, field := range fields {
		if _, ok := records[0][field]; !ok {
			return fmt.Errorf("invalid %s structure: missing field %q", name, field)
		}
	}
	return nil
}
