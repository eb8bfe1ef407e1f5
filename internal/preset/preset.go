// Package preset reads preset list templates: parsing and validating preset
// files, fetching them from the preset catalog, and naming exported lists.
package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

const (
	// ExportDescription and ExportCategory mark files written by Export.
	ExportDescription = "Exported from Scrappy Mart"
	ExportCategory    = "CUSTOM"

	// DefaultExportPhase is written for entries without a phase.
	DefaultExportPhase = 1

	otherCategory = "OTHER"
)

var (
	ErrInvalidPreset = errors.New("invalid preset file")
	ErrNotFound      = errors.New("preset not found")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structure of a preset: items must be present and every
// item id and quantity non-negative.
func Validate(p model.Preset) error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidPreset, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	return nil
}

// Parse reads a preset file. The items field must be a JSON array. When the
// file has no name, fallbackName (typically the uploaded file name, with any
// .json suffix removed) is used.
func Parse(data []byte, fallbackName string) (model.Preset, error) {
	var raw struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Items       json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Preset{}, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	items := bytes.TrimSpace(raw.Items)
	if len(items) == 0 || items[0] != '[' {
		return model.Preset{}, fmt.Errorf("%w: items must be an array", ErrInvalidPreset)
	}

	p := model.Preset{Name: raw.Name, Description: raw.Description}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return model.Preset{}, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(fallbackName, ".json")
	}

	if err := Validate(p); err != nil {
		return model.Preset{}, err
	}
	return p, nil
}

// Phases returns the distinct phases used by the preset's items, ascending.
func Phases(p model.Preset) []int {
	seen := make(map[int]bool)
	var phases []int
	for _, item := range p.Items {
		if !seen[item.Phase] {
			seen[item.Phase] = true
			phases = append(phases, item.Phase)
		}
	}
	sort.Ints(phases)
	return phases
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]`)

// ExportFileName derives a download name from a list name.
func ExportFileName(listName string) string {
	return unsafeFileChars.ReplaceAllString(strings.ToLower(listName), "_") + ".json"
}

// Search returns the catalog entries whose name, description or category
// contains query, ignoring case. An empty query returns files unchanged.
func Search(files []model.PresetFile, query string) []model.PresetFile {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return files
	}
	var out []model.PresetFile
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.Description), q) ||
			strings.Contains(strings.ToLower(f.Category), q) {
			out = append(out, f)
		}
	}
	return out
}

// GroupByCategory buckets catalog entries by category, preserving order
// within each bucket. Entries without a category go under "OTHER".
func GroupByCategory(files []model.PresetFile) map[string][]model.PresetFile {
	groups := make(map[string][]model.PresetFile)
	for _, f := range files {
		cat := f.Category
		if cat == "" {
			cat = otherCategory
		}
		groups[cat] = append(groups[cat], f)
	}
	return groups
}
