package service

import (
	"context"
	"errors"
	"testing"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/services"
)

func strptr(s string) *string { return &s }

func testHistory(entries ...models.VersionEntry) models.DocumentHistory {
	return models.DocumentHistory{
		Name:         "sketch",
		Entries:      entries,
		CurrentIndex: len(entries) - 1,
	}
}

func entry(id, code string) models.VersionEntry {
	return models.VersionEntry{
		EntryID:   id,
		Code:      code,
		Timestamp: 1000,
		Label:     "edit",
		Kind:      models.EntryKindUserEdit,
	}
}

func newDocumentService(docRepo *fakeDocumentRepo, versionRepo *fakeVersionRepo) services.DocumentService {
	return newDocumentServiceWith(docRepo, versionRepo, newFakeFolderRepo())
}

func newDocumentServiceWith(docRepo *fakeDocumentRepo, versionRepo *fakeVersionRepo, folderRepo *fakeFolderRepo) services.DocumentService {
	return NewDocumentService(docRepo, versionRepo, folderRepo, &fakeTxManager{}, testLimits(), testLogger())
}

func mustCreate(t *testing.T, svc services.DocumentService, ownerID string, h models.DocumentHistory) *models.Document {
	t.Helper()
	doc, err := svc.Create(context.Background(), &services.CreateDocumentRequest{OwnerID: ownerID, History: h})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return doc
}

func TestDocumentService_CreatePersistsHistory(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	svc := newDocumentService(docRepo, versionRepo)

	doc := mustCreate(t, svc, "alice", testHistory(entry("a", "v1"), entry("b", "v2")))

	if doc.CurrentCode != "v2" {
		t.Errorf("CurrentCode = %q, want %q", doc.CurrentCode, "v2")
	}
	if doc.Visibility != models.VisibilityPrivate {
		t.Errorf("Visibility = %q, want private default", doc.Visibility)
	}

	persisted, _ := versionRepo.ListByDocument(context.Background(), doc.ID)
	if len(persisted) != 2 {
		t.Fatalf("persisted %d entries, want 2", len(persisted))
	}
	for i, e := range persisted {
		if e.Position != i {
			t.Errorf("entry %q at position %d, want %d", e.EntryID, e.Position, i)
		}
	}
}

func TestDocumentService_SaveRemovedEntryShiftsFollowers(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	svc := newDocumentService(docRepo, versionRepo)

	doc := mustCreate(t, svc, "alice", testHistory(entry("a", "v1"), entry("b", "v2"), entry("c", "v3")))

	// Drop the middle entry; c shifts from position 2 to 1.
	h := testHistory(entry("a", "v1"), entry("c", "v3"))
	saved, err := svc.Save(context.Background(), &services.SaveDocumentRequest{
		OwnerID: "alice", DocumentID: doc.ID, History: h,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.CurrentCode != "v3" {
		t.Errorf("CurrentCode = %q, want %q", saved.CurrentCode, "v3")
	}

	persisted, _ := versionRepo.ListByDocument(context.Background(), doc.ID)
	if len(persisted) != 2 {
		t.Fatalf("persisted %d entries, want 2", len(persisted))
	}
	wantIDs := []string{"a", "c"}
	for i, e := range persisted {
		if e.EntryID != wantIDs[i] || e.Position != i {
			t.Errorf("persisted[%d] = (%q, %d), want (%q, %d)", i, e.EntryID, e.Position, wantIDs[i], i)
		}
	}
}

func TestDocumentService_SaveValidation(t *testing.T) {
	svc := newDocumentService(newFakeDocumentRepo(), newFakeVersionRepo())

	tests := []struct {
		name    string
		ownerID string
		history models.DocumentHistory
		wantErr error
	}{
		{
			name:    "no owner",
			ownerID: "",
			history: testHistory(entry("a", "v1")),
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "empty history",
			ownerID: "alice",
			history: models.DocumentHistory{Name: "sketch", CurrentIndex: 0},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "index out of range",
			ownerID: "alice",
			history: models.DocumentHistory{Name: "sketch", Entries: []models.VersionEntry{entry("a", "v1")}, CurrentIndex: 1},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "duplicate entry id",
			ownerID: "alice",
			history: testHistory(entry("a", "v1"), entry("a", "v2")),
			wantErr: domain.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), &services.SaveDocumentRequest{
				OwnerID: tt.ownerID, DocumentID: "doc-1", History: tt.history,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Save error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocumentService_GetHidesPrivateFromOthers(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	svc := newDocumentService(docRepo, versionRepo)

	doc := mustCreate(t, svc, "alice", testHistory(entry("a", "v1")))

	if _, err := svc.Get(context.Background(), "alice", doc.ID); err != nil {
		t.Errorf("owner Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "bob", doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger Get error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), "", doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("anonymous Get error = %v, want ErrNotFound", err)
	}

	if _, err := svc.SetVisibility(context.Background(), "alice", doc.ID, models.VisibilityUnlisted); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	if _, err := svc.Get(context.Background(), "", doc.ID); err != nil {
		t.Errorf("anonymous Get of unlisted: %v", err)
	}
}

func TestDocumentService_SetFolderRequiresOwnedFolder(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	folderRepo := newFakeFolderRepo()
	svc := newDocumentServiceWith(docRepo, newFakeVersionRepo(), folderRepo)

	doc := mustCreate(t, svc, "alice", testHistory(entry("a", "v1")))

	bobsFolder := NewFolderService(folderRepo, docRepo, &fakeTxManager{}, testLimits(), testLogger())
	folder, err := bobsFolder.Create(context.Background(), "bob", "drafts")
	if err != nil {
		t.Fatalf("Create folder: %v", err)
	}

	if _, err := svc.SetFolder(context.Background(), "alice", doc.ID, &folder.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("filing into someone else's folder error = %v, want ErrNotFound", err)
	}
}

func TestDocumentService_DeleteRemovesHistory(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	versionRepo := newFakeVersionRepo()
	svc := newDocumentService(docRepo, versionRepo)

	doc := mustCreate(t, svc, "alice", testHistory(entry("a", "v1")))

	if err := svc.Delete(context.Background(), "bob", doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger Delete error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "alice", doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if persisted, _ := versionRepo.ListByDocument(context.Background(), doc.ID); len(persisted) != 0 {
		t.Errorf("version rows survived delete: %d", len(persisted))
	}
}

func TestDocumentService_LikeRequiresReadableDocument(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	svc := newDocumentService(docRepo, newFakeVersionRepo())

	doc := mustCreate(t, svc, "alice", testHistory(entry("a", "v1")))

	if err := svc.Like(context.Background(), "bob", doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("like of private doc error = %v, want ErrNotFound", err)
	}
	if err := svc.Like(context.Background(), "", doc.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous like error = %v, want ErrUnauthorized", err)
	}

	if _, err := svc.SetVisibility(context.Background(), "alice", doc.ID, models.VisibilityPublic); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	if err := svc.Like(context.Background(), "bob", doc.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	got, _ := docRepo.GetByID(context.Background(), doc.ID)
	if got.LikeCount != 1 {
		t.Errorf("LikeCount = %d, want 1", got.LikeCount)
	}
}
