package services_test

import (
	"context"
	"testing"

	"voicereel/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithCharacter(ctx, "char_4202_haruka")
	ctx = services.WithStage(ctx, "export")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if id, ok := services.CharacterFromContext(ctx); !ok || id != "char_4202_haruka" {
		t.Fatalf("unexpected character: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "export" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(services.WithRunID(ctx, "")); ok {
		t.Fatal("expected no run id value")
	}
}
