package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/erazemk/zaloga/internal/apperr"
	"github.com/erazemk/zaloga/internal/artifact"
	"github.com/erazemk/zaloga/internal/catalog"
	"github.com/erazemk/zaloga/internal/model"
)

// ItemsHandler handles inventory item endpoints.
type ItemsHandler struct {
	Catalog   *catalog.Service
	Artifacts *artifact.Manager
	MaxUpload int64
}

// itemResult pairs an item with the non-fatal warnings its operation
// produced (rejected upload, failed PDF generation).
type itemResult struct {
	Item     *model.Item `json:"item"`
	Warnings []string    `json:"warnings,omitempty"`
}

// List handles GET /api/items. Supports ?search= (case-insensitive
// substring on name) and ?category= ("All" or empty disables the filter).
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.List(r.URL.Query().Get("search"), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items (multipart form with an optional image).
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseItemForm(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	item, warnings, err := h.Catalog.Create(input)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, itemResult{Item: item, Warnings: warnings})
}

// Update handles PUT /api/items/{id} (multipart form with an optional image).
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseItemForm(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	item, warnings, err := h.Catalog.Update(r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, itemResult{Item: item, Warnings: warnings})
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.Catalog.Delete(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"message": "item deleted"}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	jsonResponse(w, http.StatusOK, resp)
}

// GetImage handles GET /api/items/{id}/image. Items without a usable image
// get the placeholder; a missing referenced file is never a hard error.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if item.ImageFilename != nil {
		path := h.Artifacts.ImagePath(*item.ImageFilename)
		if _, err := os.Stat(path); err == nil {
			http.ServeFile(w, r, path)
			return
		}
	}

	placeholder := h.Artifacts.PlaceholderPath()
	if _, err := os.Stat(placeholder); err == nil {
		http.ServeFile(w, r, placeholder)
		return
	}
	jsonError(w, http.StatusNotFound, "no image")
}

// GetPDF handles GET /api/items/{id}/pdf.
func (h *ItemsHandler) GetPDF(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if item.PDFFilename == nil {
		jsonError(w, http.StatusNotFound, "no PDF available for this item")
		return
	}

	path := h.Artifacts.PDFPath(*item.PDFFilename)
	if _, err := os.Stat(path); err != nil {
		jsonError(w, http.StatusNotFound, "PDF not found (edit and re-save the item to regenerate)")
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+*item.PDFFilename+"\"")
	http.ServeFile(w, r, path)
}

// Categories handles GET /api/categories.
func (h *ItemsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.Categories()
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, categories)
}

// parseItemForm reads the multipart item form shared by Create and Update.
func (h *ItemsHandler) parseItemForm(w http.ResponseWriter, r *http.Request) (catalog.ItemInput, error) {
	var input catalog.ItemInput

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		return input, apperr.Validation("file too large or invalid multipart form")
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		return input, apperr.Validation("quantity must be an integer")
	}
	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		return input, apperr.Validation("price must be a decimal number")
	}

	input = catalog.ItemInput{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Quantity: quantity,
		Price:    price,
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil
	}
	if err != nil {
		return input, apperr.Validation("invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return input, apperr.Validation("reading image upload: %v", err)
	}
	input.Image = &catalog.ImageUpload{Data: data, Filename: header.Filename}
	return input, nil
}
