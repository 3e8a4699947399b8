package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"history-quiz-service/internal/domain"
)

func TestFallbackSupplierPrefersPrimary(t *testing.T) {
	primary := supplierFunc(func(_ context.Context, difficulty domain.Difficulty, _ map[string]struct{}) (domain.Question, error) {
		return domain.Question{Text: "from-primary", Difficulty: difficulty}, nil
	})
	fallback := supplierFunc(func(context.Context, domain.Difficulty, map[string]struct{}) (domain.Question, error) {
		t.Fatal("fallback must not be consulted when the primary succeeds")
		return domain.Question{}, nil
	})

	s := NewFallbackSupplier(primary, fallback, zerolog.Nop())
	q, err := s.RequestQuestion(context.Background(), domain.DifficultyEasy, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if q.Text != "from-primary" {
		t.Fatalf("question = %+v", q)
	}
}

func TestFallbackSupplierRecoversFromPrimaryFailure(t *testing.T) {
	primary := supplierFunc(func(context.Context, domain.Difficulty, map[string]struct{}) (domain.Question, error) {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierNetwork, fmt.Errorf("connection refused"))
	})
	fallback := supplierFunc(func(_ context.Context, difficulty domain.Difficulty, _ map[string]struct{}) (domain.Question, error) {
		return domain.Question{Text: "from-pool", Difficulty: difficulty}, nil
	})

	s := NewFallbackSupplier(primary, fallback, zerolog.Nop())
	q, err := s.RequestQuestion(context.Background(), domain.DifficultyMedium, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if q.Text != "from-pool" {
		t.Fatalf("question = %+v", q)
	}
}

func TestFallbackSupplierPoolOnly(t *testing.T) {
	fallback := supplierFunc(func(_ context.Context, difficulty domain.Difficulty, _ map[string]struct{}) (domain.Question, error) {
		return domain.Question{Text: "from-pool", Difficulty: difficulty}, nil
	})

	s := NewFallbackSupplier(nil, fallback, zerolog.Nop())
	q, err := s.RequestQuestion(context.Background(), domain.DifficultyHard, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if q.Text != "from-pool" {
		t.Fatalf("question = %+v", q)
	}
}

func TestFallbackSupplierSurfacesPoolFailure(t *testing.T) {
	primary := supplierFunc(func(context.Context, domain.Difficulty, map[string]struct{}) (domain.Question, error) {
		return domain.Question{}, domain.NewSupplierError(domain.SupplierInvalidPayload, fmt.Errorf("bad json"))
	})
	fallback := supplierFunc(func(context.Context, domain.Difficulty, map[string]struct{}) (domain.Question, error) {
		return domain.Question{}, domain.ErrPoolEmpty
	})

	s := NewFallbackSupplier(primary, fallback, zerolog.Nop())
	if _, err := s.RequestQuestion(context.Background(), domain.DifficultyEasy, nil); !errors.Is(err, domain.ErrPoolEmpty) {
		t.Fatalf("expected pool failure to surface, got %v", err)
	}
}
