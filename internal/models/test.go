package models

import "time"

// Test is an authored quiz. MaxScore is derived from its questions and is
// only ever written by the recompute step of question mutations.
type Test struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:200"`
	Description string    `json:"description" gorm:"size:1000"`
	MaxScore    int       `json:"max_score" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;autoCreateTime"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
}

func (Test) TableName() string {
	return "tests"
}

type Question struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	TestID uint   `json:"test_id" gorm:"not null;index"`
	Text   string `json:"text" gorm:"not null;size:500"`
	Points int    `json:"points" gorm:"not null;check:chk_questions_points_positive,points > 0"`

	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null;size:300"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

func (Option) TableName() string {
	return "options"
}

// CorrectOption returns the option that scores the question. When authoring
// left several options flagged, the one with the lowest id wins. Nil means
// the question cannot be scored.
func (q *Question) CorrectOption() *Option {
	var correct *Option
	for i := range q.Options {
		opt := &q.Options[i]
		if !opt.IsCorrect {
			continue
		}
		if correct == nil || opt.ID < correct.ID {
			correct = opt
		}
	}
	return correct
}

// SumPoints is the in-memory counterpart of the MaxScore recompute query
func SumPoints(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}
