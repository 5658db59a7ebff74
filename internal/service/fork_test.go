package service

import (
	"context"
	"errors"
	"testing"

	"quill/internal/domain"
	"quill/internal/domain/models"
)

func TestForkService_CopiesHistoryAndTracksLineage(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	docSvc := newDocumentService(docRepo, versionRepo)
	forkSvc := NewForkService(docRepo, versionRepo, &fakeTxManager{}, testLogger())

	source := mustCreate(t, docSvc, "alice", testHistory(entry("a", "v1"), entry("b", "v2")))
	if _, err := docSvc.SetVisibility(context.Background(), "alice", source.ID, models.VisibilityPublic); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}

	fork, err := forkSvc.Fork(context.Background(), "bob", source.ID, nil)
	if err != nil {
		t.Fatalf("Fork: %v", err)
	}

	if fork.OwnerID != "bob" {
		t.Errorf("OwnerID = %q, want bob", fork.OwnerID)
	}
	if fork.Name != "sketch (fork)" {
		t.Errorf("Name = %q, want %q", fork.Name, "sketch (fork)")
	}
	if fork.ForkedFromID == nil || *fork.ForkedFromID != source.ID {
		t.Errorf("ForkedFromID = %v, want %q", fork.ForkedFromID, source.ID)
	}
	if fork.ForkDepth != 1 {
		t.Errorf("ForkDepth = %d, want 1", fork.ForkDepth)
	}
	if fork.Visibility != models.VisibilityPrivate {
		t.Errorf("fork visibility = %q, want private", fork.Visibility)
	}
	if fork.CurrentCode != "v2" {
		t.Errorf("CurrentCode = %q, want %q", fork.CurrentCode, "v2")
	}

	copied, _ := versionRepo.ListByDocument(context.Background(), fork.ID)
	if len(copied) != 2 {
		t.Fatalf("copied %d entries, want 2", len(copied))
	}
	for _, e := range copied {
		if e.DocumentID != fork.ID {
			t.Errorf("copied entry %q points at %q, want %q", e.EntryID, e.DocumentID, fork.ID)
		}
	}

	got, _ := docRepo.GetByID(context.Background(), source.ID)
	if got.ForkCount != 1 {
		t.Errorf("source ForkCount = %d, want 1", got.ForkCount)
	}
}

func TestForkService_DepthAccumulates(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	docSvc := newDocumentService(docRepo, versionRepo)
	forkSvc := NewForkService(docRepo, versionRepo, &fakeTxManager{}, testLogger())

	source := mustCreate(t, docSvc, "alice", testHistory(entry("a", "v1")))

	// Owner can fork their own private document; each generation deepens.
	first, err := forkSvc.Fork(context.Background(), "alice", source.ID, strptr("gen 1"))
	if err != nil {
		t.Fatalf("first Fork: %v", err)
	}
	second, err := forkSvc.Fork(context.Background(), "alice", first.ID, strptr("gen 2"))
	if err != nil {
		t.Fatalf("second Fork: %v", err)
	}
	if first.ForkDepth != 1 || second.ForkDepth != 2 {
		t.Errorf("depths = %d, %d, want 1, 2", first.ForkDepth, second.ForkDepth)
	}
	if first.Name != "gen 1" {
		t.Errorf("Name = %q, want explicit override", first.Name)
	}
}

func TestForkService_PrivateSourceHiddenFromOthers(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	docSvc := newDocumentService(docRepo, versionRepo)
	forkSvc := NewForkService(docRepo, versionRepo, &fakeTxManager{}, testLogger())

	source := mustCreate(t, docSvc, "alice", testHistory(entry("a", "v1")))

	if _, err := forkSvc.Fork(context.Background(), "bob", source.ID, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Fork error = %v, want ErrNotFound", err)
	}
	if _, err := forkSvc.Fork(context.Background(), "", source.ID, nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous Fork error = %v, want ErrUnauthorized", err)
	}
}

func TestForkService_CounterFailureDoesNotFailFork(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	docSvc := newDocumentService(docRepo, versionRepo)
	forkSvc := NewForkService(docRepo, versionRepo, &fakeTxManager{}, testLogger())

	source := mustCreate(t, docSvc, "alice", testHistory(entry("a", "v1")))
	if _, err := docSvc.SetVisibility(context.Background(), "alice", source.ID, models.VisibilityPublic); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}

	docRepo.counterErr = errors.New("connection reset")
	fork, err := forkSvc.Fork(context.Background(), "bob", source.ID, nil)
	if err != nil {
		t.Fatalf("Fork failed on counter error: %v", err)
	}
	if _, err := docRepo.GetByID(context.Background(), fork.ID); err != nil {
		t.Errorf("fork document missing: %v", err)
	}
}
