package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

const (
	maxTitleLength        = 200
	maxQuestionTextLength = 500
	maxOptionTextLength   = 300
	minPoints             = 1
	maxPoints             = 100
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator panics if a business rule cannot be registered; the
// rules are fixed at compile time.
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	if err := registerRules(bv.validate, businessRules()); err != nil {
		panic(err)
	}
	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateTestCreate checks the request and normalizes its text fields
func (bv *BusinessValidator) ValidateTestCreate(req *models.TestCreateRequest) ValidationErrors {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateQuestionCreate(req *models.QuestionCreateRequest) ValidationErrors {
	req.Text = strings.TrimSpace(req.Text)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateOptionCreate(req *models.OptionCreateRequest) ValidationErrors {
	req.Text = strings.TrimSpace(req.Text)
	return bv.Validate(req)
}

// businessRules maps custom tags to their checks. Lengths count
// characters, not bytes.
func businessRules() map[string]validator.Func {
	return map[string]validator.Func{
		"test_title":    textLength(maxTitleLength),
		"question_text": textLength(maxQuestionTextLength),
		"option_text":   textLength(maxOptionTextLength),
		"points_range": func(fl validator.FieldLevel) bool {
			points := fl.Field().Int()
			return points >= minPoints && points <= maxPoints
		},
	}
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q rule: %w", tag, err)
		}
	}
	return nil
}

func textLength(limit int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return n >= 1 && n <= limit
	}
}
