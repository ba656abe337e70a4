// Package catalog implements inventory item management: CRUD with search
// and category filtering, orchestrating the record store and the artifact
// manager so image and PDF files stay in lockstep with the records.
//
// Artifact failures never abort an operation; they are collected into a
// warnings slice returned alongside the result.
package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/erazemk/zaloga/internal/apperr"
	"github.com/erazemk/zaloga/internal/artifact"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/store"
)

// CategoryAll is the filter value that disables category filtering.
const CategoryAll = "All"

// ImageUpload is an optional uploaded image accompanying a create or update.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// ItemInput carries the editable item fields.
type ItemInput struct {
	Name     string
	Category string
	Quantity int
	Price    decimal.Decimal
	Image    *ImageUpload
}

// Service implements the inventory catalog.
type Service struct {
	items     *store.Store[model.Item]
	artifacts *artifact.Manager
	log       zerolog.Logger
}

// NewService creates a catalog service.
func NewService(items *store.Store[model.Item], artifacts *artifact.Manager, log zerolog.Logger) *Service {
	return &Service{items: items, artifacts: artifacts, log: log}
}

// List returns items matching the filters: case-insensitive substring match
// on name, exact match on category unless it is empty or "All". Both
// filters compose with AND. Record order is preserved.
func (s *Service) List(search, category string) ([]model.Item, error) {
	items, err := s.items.Load()
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(search)
	filtered := make([]model.Item, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		if category != "" && category != CategoryAll && item.Category != category {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

// Get returns an item by id.
func (s *Service) Get(id string) (*model.Item, error) {
	items, err := s.items.Load()
	if err != nil {
		return nil, err
	}
	item := findByID(items, id)
	if item == nil {
		return nil, apperr.NotFound("item not found")
	}
	return item, nil
}

// Create adds a new item, storing its image (if any) and generating its PDF
// summary. A rejected upload or a failed generation does not abort the
// create: the item is persisted without the artifact and a warning is
// returned.
func (s *Service) Create(in ItemInput) (*model.Item, []string, error) {
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}

	items, err := s.items.Load()
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	item := model.Item{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Category: in.Category,
		Quantity: in.Quantity,
		Price:    in.Price,
	}

	if in.Image != nil {
		name, err := s.artifacts.StoreImage(in.Image.Data, in.Image.Filename)
		if err != nil {
			warnings = append(warnings, "item added without image: "+err.Error())
		} else {
			item.ImageFilename = &name
		}
	}

	if name, err := s.artifacts.GenerateSummary(item); err != nil {
		s.log.Warn().Str("item", item.Name).Err(err).Msg("summary generation failed")
		warnings = append(warnings, "item added without PDF: "+err.Error())
	} else {
		item.PDFFilename = &name
	}

	items = append(items, item)
	if err := s.items.Save(items); err != nil {
		return nil, warnings, err
	}
	s.log.Info().Str("item", item.Name).Str("id", item.ID).Msg("item created")
	return &item, warnings, nil
}

// Update edits an item. A new upload replaces the old image (the superseded
// file is best-effort deleted); the summary is always regenerated, and a
// previous PDF with a different name is deleted afterwards. If regeneration
// fails, the previous PDF reference is kept unchanged.
func (s *Service) Update(id string, in ItemInput) (*model.Item, []string, error) {
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}

	items, err := s.items.Load()
	if err != nil {
		return nil, nil, err
	}
	item := findByID(items, id)
	if item == nil {
		return nil, nil, apperr.NotFound("item not found")
	}

	var warnings []string
	item.Name = in.Name
	item.Category = in.Category
	item.Quantity = in.Quantity
	item.Price = in.Price

	if in.Image != nil {
		old := ""
		if item.ImageFilename != nil {
			old = *item.ImageFilename
		}
		name, err := s.artifacts.ReplaceImage(old, in.Image.Data, in.Image.Filename)
		if err != nil {
			warnings = append(warnings, "kept previous image: "+err.Error())
		} else {
			item.ImageFilename = &name
		}
	}

	oldPDF := ""
	if item.PDFFilename != nil {
		oldPDF = *item.PDFFilename
	}
	if name, err := s.artifacts.GenerateSummary(*item); err != nil {
		s.log.Warn().Str("item", item.Name).Err(err).Msg("summary regeneration failed")
		warnings = append(warnings, "PDF may be outdated: "+err.Error())
	} else {
		item.PDFFilename = &name
		if oldPDF != "" && oldPDF != name {
			if err := s.artifacts.DeletePDF(oldPDF); err != nil {
				warnings = append(warnings, "could not delete previous PDF: "+err.Error())
			}
		}
	}

	if err := s.items.Save(items); err != nil {
		return nil, warnings, err
	}
	s.log.Info().Str("item", item.Name).Str("id", item.ID).Msg("item updated")
	return item, warnings, nil
}

// Delete removes an item along with its image and PDF files. File deletions
// are best-effort: a failure is reported as a warning, the record is removed
// regardless.
func (s *Service) Delete(id string) ([]string, error) {
	items, err := s.items.Load()
	if err != nil {
		return nil, err
	}
	item := findByID(items, id)
	if item == nil {
		return nil, apperr.NotFound("item not found")
	}

	var warnings []string
	if item.PDFFilename != nil {
		if err := s.artifacts.DeletePDF(*item.PDFFilename); err != nil {
			warnings = append(warnings, "could not delete PDF: "+err.Error())
		}
	}
	if item.ImageFilename != nil {
		if err := s.artifacts.DeleteImage(*item.ImageFilename); err != nil {
			warnings = append(warnings, "could not delete image: "+err.Error())
		}
	}

	kept := make([]model.Item, 0, len(items)-1)
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if err := s.items.Save(kept); err != nil {
		return warnings, err
	}
	s.log.Info().Str("id", id).Msg("item deleted")
	return warnings, nil
}

// Categories returns the canonical category list plus any other categories
// carried by existing records. The extras are for display and filtering
// only; the canonical set is never extended on disk.
func (s *Service) Categories() ([]string, error) {
	items, err := s.items.Load()
	if err != nil {
		return nil, err
	}

	categories := append([]string{}, model.Categories...)
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		seen[c] = true
	}
	for _, item := range items {
		if item.Category != "" && !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	return categories, nil
}

func validateInput(in ItemInput) error {
	if in.Name == "" {
		return apperr.Validation("item name is required")
	}
	if in.Category == "" {
		return apperr.Validation("category is required")
	}
	if in.Quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	if in.Price.LessThan(model.MinPrice) {
		return apperr.Validation("price must be at least $0.01")
	}
	return nil
}

func findByID(items []model.Item, id string) *model.Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
