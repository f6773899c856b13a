package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/testing-service/internal/models"
)

func TestCreateTestValidation(t *testing.T) {
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")

	_, err := fx.authoring.CreateTest(context.Background(), "t1", &CreateTestRequest{Title: "   "})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var verrs ValidationErrors
	if !errors.As(err, &verrs) || verrs[0].Field != "Title" {
		t.Fatalf("expected Title to be rejected, got %v", err)
	}
}

func TestCreateTestRequiresTeacherProfile(t *testing.T) {
	fx := newFixture(t, AttemptConfig{})

	_, err := fx.authoring.CreateTest(context.Background(), "nobody", &CreateTestRequest{Title: "Quiz"})
	if !errors.Is(err, ErrTeacherNotFound) {
		t.Fatalf("expected ErrTeacherNotFound, got %v", err)
	}
}

func TestListTestsShowsOnlyOwnTests(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")
	fx.repo.addTeacher("t2")

	qz := fx.createQuiz(t, "t1")
	if _, err := fx.authoring.CreateTest(ctx, "t2", &CreateTestRequest{Title: "Other"}); err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	tests, err := fx.authoring.ListTests(ctx, "t1")
	if err != nil {
		t.Fatalf("ListTests: %v", err)
	}
	if len(tests) != 1 {
		t.Fatalf("expected 1 test, got %d", len(tests))
	}
	if tests[0].TestID != qz.testID || tests[0].QuestionsCount != 2 || tests[0].MaxScore != 8 {
		t.Fatalf("unexpected summary: %+v", tests[0])
	}
}

func TestAuthoringRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")
	fx.repo.addTeacher("t2")
	qz := fx.createQuiz(t, "t1")

	optionOfQ1 := qz.q1Right

	tests := []struct {
		name string
		call func() error
	}{
		{"get for editing", func() error {
			_, err := fx.authoring.GetTestForEditing(ctx, "t2", qz.testID)
			return err
		}},
		{"add question", func() error {
			_, err := fx.authoring.AddQuestion(ctx, "t2", qz.testID, &CreateQuestionRequest{Text: "Q3", Points: 1})
			return err
		}},
		{"delete question", func() error {
			return fx.authoring.DeleteQuestion(ctx, "t2", qz.q1)
		}},
		{"add option", func() error {
			_, err := fx.authoring.AddOption(ctx, "t2", qz.q1, &CreateOptionRequest{Text: "maybe"})
			return err
		}},
		{"delete option", func() error {
			return fx.authoring.DeleteOption(ctx, "t2", optionOfQ1)
		}},
		{"delete test", func() error {
			return fx.authoring.DeleteTest(ctx, "t2", qz.testID)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !IsAccessDenied(err) {
				t.Fatalf("expected access denied, got %v", err)
			}
		})
	}

	if got := fx.repo.maxScore(qz.testID); got != 8 {
		t.Fatalf("denied mutations must leave max score at 8, got %d", got)
	}
}

func TestAuthoringNotFound(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")

	if _, err := fx.authoring.AddQuestion(ctx, "t1", 404, &CreateQuestionRequest{Text: "Q", Points: 1}); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
	if err := fx.authoring.DeleteQuestion(ctx, "t1", 404); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := fx.authoring.AddOption(ctx, "t1", 404, &CreateOptionRequest{Text: "x"}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if err := fx.authoring.DeleteOption(ctx, "t1", 404); !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("expected ErrOptionNotFound, got %v", err)
	}
	if err := fx.authoring.DeleteTest(ctx, "t1", 404); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddQuestionRejectsPointsOutOfRange(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")
	qz := fx.createQuiz(t, "t1")

	for _, points := range []int{0, -1, 101} {
		_, err := fx.authoring.AddQuestion(ctx, "t1", qz.testID, &CreateQuestionRequest{Text: "Q", Points: points})
		if !IsValidationError(err) {
			t.Fatalf("points %d: expected validation error, got %v", points, err)
		}
	}
	if got := fx.repo.maxScore(qz.testID); got != 8 {
		t.Fatalf("expected max score 8, got %d", got)
	}
}

func TestMaxScoreTracksQuestions(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")
	qz := fx.createQuiz(t, "t1")

	q3, err := fx.authoring.AddQuestion(ctx, "t1", qz.testID, &CreateQuestionRequest{Text: "Q3", Points: 10})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	if got := fx.repo.maxScore(qz.testID); got != 18 {
		t.Fatalf("expected 18, got %d", got)
	}

	for _, id := range []uint{qz.q1, qz.q2, q3.QuestionID} {
		if err := fx.authoring.DeleteQuestion(ctx, "t1", id); err != nil {
			t.Fatalf("DeleteQuestion %d: %v", id, err)
		}
	}
	if got := fx.repo.maxScore(qz.testID); got != 0 {
		t.Fatalf("expected 0 without questions, got %d", got)
	}
}

func TestDeleteOptionLeavesQuestionUnscorable(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")
	qz := fx.createQuiz(t, "t1")

	if err := fx.authoring.DeleteOption(ctx, "t1", qz.q1Right); err != nil {
		t.Fatalf("DeleteOption: %v", err)
	}

	editor, err := fx.authoring.GetTestForEditing(ctx, "t1", qz.testID)
	if err != nil {
		t.Fatalf("GetTestForEditing: %v", err)
	}
	for _, q := range editor.Questions {
		if q.QuestionID != qz.q1 {
			continue
		}
		if len(q.Options) != 1 || q.Options[0].IsCorrect {
			t.Fatalf("expected only the wrong option to remain, got %+v", q.Options)
		}
	}
}

func TestDeleteTest(t *testing.T) {
	ctx := context.Background()

	t.Run("without results", func(t *testing.T) {
		fx := newFixture(t, AttemptConfig{})
		fx.repo.addTeacher("t1")
		qz := fx.createQuiz(t, "t1")

		if err := fx.authoring.DeleteTest(ctx, "t1", qz.testID); err != nil {
			t.Fatalf("DeleteTest: %v", err)
		}
		if _, err := fx.authoring.GetTestForEditing(ctx, "t1", qz.testID); !errors.Is(err, ErrTestNotFound) {
			t.Fatalf("expected ErrTestNotFound after delete, got %v", err)
		}
	})

	t.Run("with results", func(t *testing.T) {
		fx, _, qz := attachedQuiz(t, AttemptConfig{EnforceSubmitAccess: true})
		if _, err := fx.attempt.Submit(ctx, "s1", &SubmitTestRequest{TestID: qz.testID}); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		err := fx.authoring.DeleteTest(ctx, "t1", qz.testID)
		if !errors.Is(err, ErrConflict) || !errors.Is(err, ErrTestHasResults) {
			t.Fatalf("expected ErrTestHasResults, got %v", err)
		}
		if fx.repo.maxScore(qz.testID) != 8 {
			t.Fatalf("test must survive the rejected delete")
		}
	})
}

func TestGetTestForEditingIncludesCorrectness(t *testing.T) {
	fx := newFixture(t, AttemptConfig{})
	fx.repo.addTeacher("t1")
	qz := fx.createQuiz(t, "t1")

	editor, err := fx.authoring.GetTestForEditing(context.Background(), "t1", qz.testID)
	if err != nil {
		t.Fatalf("GetTestForEditing: %v", err)
	}

	correct := map[uint]bool{}
	for _, q := range editor.Questions {
		for _, o := range q.Options {
			correct[o.OptionID] = o.IsCorrect
		}
	}
	want := map[uint]bool{qz.q1Right: true, qz.q1Wrong: false, qz.q2Right: true, qz.q2Wrong: false}
	for id, isCorrect := range want {
		if correct[id] != isCorrect {
			t.Fatalf("option %d: expected correct=%v", id, isCorrect)
		}
	}
	if editor.MaxScore != models.SumPoints([]models.Question{{Points: 5}, {Points: 3}}) {
		t.Fatalf("unexpected max score %d", editor.MaxScore)
	}
}
