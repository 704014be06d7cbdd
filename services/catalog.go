package services

import (
	"context"
	"fmt"
	"strings"

	"maze-quiz-system/models"

	"github.com/charmbracelet/log"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxQuestionSlugLen = 120

// CatalogDocument is the published form of the achievement and question
// reference data.
type CatalogDocument struct {
	Achievements []CatalogAchievement `yaml:"achievements"`
	Questions    []CatalogQuestion    `yaml:"questions"`
}

type CatalogAchievement struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Rarity      string `yaml:"rarity"`
}

type CatalogQuestion struct {
	Difficulty string            `yaml:"difficulty"`
	Prompt     string            `yaml:"prompt"`
	Options    map[string]string `yaml:"options"`
	Correct    string            `yaml:"correct"`
}

// CatalogSource fetches a raw catalog document (e.g. from R2).
type CatalogSource interface {
	FetchCatalog(ctx context.Context) ([]byte, error)
}

// SeedSummary counts rows written by one seed pass.
type SeedSummary struct {
	Achievements int
	Questions    int
}

// CatalogService provisions the reference tables. It never touches player data.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// NormalizeCode turns "first win" / "First-Win" / "FIRST_WIN" into "FIRST_WIN".
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(slug.Make(raw), "-", "_"))
}

// QuestionSlug is the natural key used to upsert questions.
func QuestionSlug(difficulty, prompt string) string {
	s := slug.Make(difficulty + " " + prompt)
	if len(s) > maxQuestionSlugLen {
		s = strings.TrimRight(s[:maxQuestionSlugLen], "-")
	}
	return s
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) (*CatalogDocument, error) {
	var doc CatalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	codes := make(map[string]bool, len(doc.Achievements))
	for i, a := range doc.Achievements {
		code := NormalizeCode(a.Code)
		if code == "" || a.Title == "" {
			return nil, fmt.Errorf("achievement %d: code and title are required", i)
		}
		if codes[code] {
			return nil, fmt.Errorf("achievement %d: duplicate code %s", i, code)
		}
		codes[code] = true
	}
	slugs := make(map[string]bool, len(doc.Questions))
	for i, q := range doc.Questions {
		if strings.TrimSpace(q.Difficulty) == "" || strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("question %d: difficulty and prompt are required", i)
		}
		key := QuestionSlug(strings.ToLower(strings.TrimSpace(q.Difficulty)), q.Prompt)
		if slugs[key] {
			return nil, fmt.Errorf("question %d: duplicate prompt", i)
		}
		slugs[key] = true
		for _, opt := range []string{"A", "B", "C", "D"} {
			if q.Options[opt] == "" {
				return nil, fmt.Errorf("question %d: option %s is missing", i, opt)
			}
		}
		if !isOption(strings.ToUpper(strings.TrimSpace(q.Correct))) {
			return nil, fmt.Errorf("question %d: correct must be one of A, B, C, D", i)
		}
	}
	return &doc, nil
}

// Seed upserts every catalog entry: achievements by code, questions by slug.
// Running it twice with the same document changes nothing.
func (s *CatalogService) Seed(ctx context.Context, doc *CatalogDocument) (SeedSummary, error) {
	var summary SeedSummary

	achievements := make([]models.Achievement, 0, len(doc.Achievements))
	for _, a := range doc.Achievements {
		rarity := a.Rarity
		if rarity == "" {
			rarity = "common"
		}
		achievements = append(achievements, models.Achievement{
			Code:        NormalizeCode(a.Code),
			Title:       a.Title,
			Description: a.Description,
			Rarity:      rarity,
		})
	}

	questions := make([]models.Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		difficulty := strings.ToLower(strings.TrimSpace(q.Difficulty))
		questions = append(questions, models.Question{
			Slug:          QuestionSlug(difficulty, q.Prompt),
			Difficulty:    difficulty,
			Prompt:        strings.TrimSpace(q.Prompt),
			OptionA:       q.Options["A"],
			OptionB:       q.Options["B"],
			OptionC:       q.Options["C"],
			OptionD:       q.Options["D"],
			CorrectOption: strings.ToUpper(strings.TrimSpace(q.Correct)),
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(achievements) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "description", "rarity"}),
			}).Create(&achievements).Error; err != nil {
				return fmt.Errorf("upsert achievements: %w", err)
			}
		}
		if len(questions) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"difficulty", "prompt", "option_a", "option_b", "option_c", "option_d",
					"correct_option", "updated_at",
				}),
			}).Create(&questions).Error; err != nil {
				return fmt.Errorf("upsert questions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return summary, storageErr("seed catalog", err)
	}

	summary.Achievements = len(achievements)
	summary.Questions = len(questions)
	return summary, nil
}

// SeedYAML parses and seeds a raw catalog document.
func (s *CatalogService) SeedYAML(ctx context.Context, data []byte) (SeedSummary, error) {
	doc, err := ParseCatalog(data)
	if err != nil {
		return SeedSummary{}, invalid("catalog", err.Error())
	}
	return s.Seed(ctx, doc)
}

// SyncFrom pulls the catalog from src and seeds it.
func (s *CatalogService) SyncFrom(ctx context.Context, src CatalogSource) (SeedSummary, error) {
	data, err := src.FetchCatalog(ctx)
	if err != nil {
		return SeedSummary{}, fmt.Errorf("fetch catalog: %w", err)
	}
	summary, err := s.SeedYAML(ctx, data)
	if err != nil {
		return summary, err
	}
	log.Info("📚 catalog synced", "achievements", summary.Achievements, "questions", summary.Questions)
	return summary, nil
}
