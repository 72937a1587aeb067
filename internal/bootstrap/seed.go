package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/artist-booking/internal/application"
)

// SeedFile is the YAML document accepted by Seed. Artists, slots and moments
// refer to categories and artists by name.
type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
	Artists    []SeedArtist   `yaml:"artists"`
	Slots      []SeedSlot     `yaml:"slots"`
	Moments    []SeedMoment   `yaml:"moments"`
}

type SeedCategory struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	Description *string `yaml:"description"`
}

type SeedArtist struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Rating   int      `yaml:"rating"`
	Price    string   `yaml:"price"`
	Location string   `yaml:"location"`
	ImageURL *string  `yaml:"image_url"`
}

type SeedSlot struct {
	Artist string `yaml:"artist"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
}

type SeedMoment struct {
	Artist    string  `yaml:"artist"`
	Category  string  `yaml:"category"`
	Date      string  `yaml:"date"`
	StartTime string  `yaml:"start_time"`
	EndTime   string  `yaml:"end_time"`
	Location  string  `yaml:"location"`
	Message   *string `yaml:"message"`
}

// SeedReport counts the records Seed created.
type SeedReport struct {
	Categories int
	Artists    int
	Slots      int
	Moments    int
	// Warnings counts moments that overlap an earlier moment of the same artist.
	Warnings int
}

// ParseSeed decodes a seed document. Unknown keys are rejected.
func ParseSeed(r io.Reader) (SeedFile, error) {
	var file SeedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return SeedFile{}, nil
		}
		return SeedFile{}, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return file, nil
}

// Seed creates every record of file through the services, so the usual
// validation and overlap rules apply. It stops at the first failure; records
// created before it are kept.
func Seed(ctx context.Context, services *Services, file SeedFile) (SeedReport, error) {
	var report SeedReport
	categoryIDs := make(map[string]string, len(file.Categories))
	artistIDs := make(map[string]string, len(file.Artists))

	for i, entry := range file.Categories {
		category, err := services.Categories.CreateCategory(ctx, application.CategoryInput{
			Type:        entry.Type,
			Name:        entry.Name,
			Description: entry.Description,
		})
		if err != nil {
			return report, fmt.Errorf("categories[%d] %q: %w", i, entry.Name, err)
		}
		categoryIDs[categoryKey(category.Type, category.Name)] = category.ID
		report.Categories++
	}

	for i, entry := range file.Artists {
		categoryID, ok := categoryIDs[categoryKey(application.CategoryTypeArtist, entry.Category)]
		if !ok {
			return report, fmt.Errorf("artists[%d] %q: unknown artist category %q", i, entry.Name, entry.Category)
		}
		artist, err := services.Artists.CreateArtist(ctx, application.ArtistInput{
			Name:       entry.Name,
			Tags:       entry.Tags,
			Rating:     entry.Rating,
			Price:      entry.Price,
			Location:   entry.Location,
			CategoryID: categoryID,
			ImageURL:   entry.ImageURL,
		})
		if err != nil {
			return report, fmt.Errorf("artists[%d] %q: %w", i, entry.Name, err)
		}
		artistIDs[nameKey(artist.Name)] = artist.ID
		report.Artists++
	}

	for i, entry := range file.Slots {
		artistID, ok := artistIDs[nameKey(entry.Artist)]
		if !ok {
			return report, fmt.Errorf("slots[%d]: unknown artist %q", i, entry.Artist)
		}
		start, err := time.Parse(time.RFC3339, entry.Start)
		if err != nil {
			return report, fmt.Errorf("slots[%d]: invalid start: %w", i, err)
		}
		end, err := time.Parse(time.RFC3339, entry.End)
		if err != nil {
			return report, fmt.Errorf("slots[%d]: invalid end: %w", i, err)
		}
		if _, err := services.Availability.CreateSlot(ctx, application.SlotInput{
			ArtistID: artistID,
			Start:    start.UTC(),
			End:      end.UTC(),
		}); err != nil {
			return report, fmt.Errorf("slots[%d]: %w", i, err)
		}
		report.Slots++
	}

	for i, entry := range file.Moments {
		artistID, ok := artistIDs[nameKey(entry.Artist)]
		if !ok {
			return report, fmt.Errorf("moments[%d]: unknown artist %q", i, entry.Artist)
		}
		categoryID, ok := categoryIDs[categoryKey(application.CategoryTypeMoment, entry.Category)]
		if !ok {
			return report, fmt.Errorf("moments[%d]: unknown moment category %q", i, entry.Category)
		}
		result, err := services.Moments.CreateMoment(ctx, application.MomentInput{
			ArtistID:   artistID,
			CategoryID: categoryID,
			Date:       entry.Date,
			StartTime:  entry.StartTime,
			EndTime:    entry.EndTime,
			Location:   entry.Location,
			Message:    entry.Message,
		})
		if err != nil {
			return report, fmt.Errorf("moments[%d]: %w", i, err)
		}
		report.Moments++
		if len(result.Warnings) > 0 {
			report.Warnings++
		}
	}

	return report, nil
}

func categoryKey(categoryType, name string) string {
	return categoryType + "/" + nameKey(name)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
