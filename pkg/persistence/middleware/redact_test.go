package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

func TestRedactionMiddleware_Contract(t *testing.T) {
	ports.RunArchiveContract(t, middleware.NewRedactionMiddleware([]string{`sk-[A-Za-z0-9]+`})(memory.NewStore()))
}

func TestRedactionMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewRedactionMiddleware([]string{`sk-[A-Za-z0-9]+`, `[\w.]+@[\w.]+`})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	snap := &domain.Snapshot{
		RunID: "redact-run",
		Nodes: []domain.Node{
			{ID: "root", Prompt: "Use key sk-abc123 and mail jdoe@example.com", Score: 5},
		},
	}

	if err := secureStore.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Immutability check
	if snap.Nodes[0].Prompt != "Use key sk-abc123 and mail jdoe@example.com" {
		t.Error("Middleware modified original snapshot in memory!")
	}

	stored, err := secureStore.Load(ctx, "redact-run")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := stored.Nodes[0].Prompt, "Use key *** and mail ***"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestChain_Order(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	archive := middleware.Chain(underlyingStore,
		middleware.NewRedactionMiddleware([]string{`secret`}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	if err := archive.Save(ctx, sampleSnapshot("chain-run")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Redaction runs first, so the decrypted prompt is already masked.
	loaded, err := archive.Load(ctx, "chain-run")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Nodes[0].Prompt != "my-***-sauce" {
		t.Errorf("Expected redacted then encrypted prompt, got %q", loaded.Nodes[0].Prompt)
	}
}
