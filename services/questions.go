package services

import (
	"context"
	"errors"
	"strings"

	"maze-quiz-system/models"

	"gorm.io/gorm"
)

// QuestionView is what the client sees; the correct option never leaves the server.
type QuestionView struct {
	ID       uint              `json:"id"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

// AnswerResult is the outcome of checking one answer.
type AnswerResult struct {
	Correct bool `json:"correct"`
}

// QuestionService serves quiz questions for wall breaks.
type QuestionService struct {
	DB *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{DB: db}
}

// Random picks one question of the given difficulty, or ErrNotFound.
func (s *QuestionService) Random(ctx context.Context, difficulty string) (*QuestionView, error) {
	if difficulty == "" {
		return nil, invalid("difficulty", "is required")
	}
	var q models.Question
	err := s.DB.WithContext(ctx).
		Where("difficulty = ?", difficulty).
		Order("RANDOM()").
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("pick question", err)
	}
	return &QuestionView{
		ID:       q.ID,
		Question: q.Prompt,
		Options: map[string]string{
			"A": q.OptionA,
			"B": q.OptionB,
			"C": q.OptionC,
			"D": q.OptionD,
		},
	}, nil
}

// Validate checks option ("A".."D", case-insensitive) against question id.
func (s *QuestionService) Validate(ctx context.Context, id uint, option string) (*AnswerResult, error) {
	if id == 0 {
		return nil, invalid("id", "is required")
	}
	option = strings.ToUpper(strings.TrimSpace(option))
	if !isOption(option) {
		return nil, invalid("answer", "must be one of A, B, C, D")
	}

	var q models.Question
	err := s.DB.WithContext(ctx).Select("id", "correct_option").First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("load question", err)
	}
	return &AnswerResult{Correct: option == q.CorrectOption}, nil
}

func isOption(s string) bool {
	switch s {
	case "A", "B", "C", "D":
		return true
	}
	return false
}
