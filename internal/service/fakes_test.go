package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/position"
)

// In-memory repository fakes. They implement the same contracts as the
// postgres implementations (ownership filters return ErrNotFound, duplicate
// memberships return ConflictError, appends compute position from max) so
// the services under test exercise real control flow.

func testLimits() *config.Limits {
	return &config.Limits{
		AutosaveDelayMS:  2000,
		MaxNameLength:    120,
		MaxHistoryLength: 200,
		MaxCodeBytes:     1 << 20,
		MaxPromptBytes:   8192,
		PublicPageSize:   50,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fakeDocumentRepo struct {
	mu         sync.Mutex
	docs       map[string]models.Document
	counterErr error
	clearErr   error
	ops        *opLog
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]models.Document)}
}

func (r *fakeDocumentRepo) log(op string) {
	if r.ops != nil {
		r.ops.record(op)
	}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

func (r *fakeDocumentRepo) GetOwned(_ context.Context, id, ownerID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.docs[doc.ID]
	if !ok || existing.OwnerID != doc.OwnerID {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Document
	for _, doc := range r.docs {
		if doc.OwnerID == ownerID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeDocumentRepo) ListPublic(_ context.Context, limit, offset int) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Document
	for _, doc := range r.docs {
		if doc.Visibility == models.VisibilityPublic {
			all = append(all, doc)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	if offset >= len(all) {
		return []models.Document{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeDocumentRepo) ClearFolder(_ context.Context, folderID, ownerID string) error {
	r.log("clear-folder")
	if r.clearErr != nil {
		return r.clearErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, doc := range r.docs {
		if doc.OwnerID == ownerID && doc.FolderID != nil && *doc.FolderID == folderID {
			doc.FolderID = nil
			r.docs[id] = doc
		}
	}
	return nil
}

func (r *fakeDocumentRepo) IncrementCounter(_ context.Context, id string, field models.CounterField) error {
	r.log("increment-" + string(field))
	if r.counterErr != nil {
		return r.counterErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	switch field {
	case models.CounterLikes:
		doc.LikeCount++
	case models.CounterForks:
		doc.ForkCount++
	case models.CounterViews:
		doc.ViewCount++
	case models.CounterComments:
		doc.CommentCount++
	}
	r.docs[id] = doc
	return nil
}

type fakeVersionRepo struct {
	mu      sync.Mutex
	entries map[string][]models.PersistedVersionEntry // keyed by document id
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{entries: make(map[string][]models.PersistedVersionEntry)}
}

func (r *fakeVersionRepo) ListByDocument(_ context.Context, documentID string) ([]models.PersistedVersionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.PersistedVersionEntry(nil), r.entries[documentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeVersionRepo) DeleteEntries(_ context.Context, documentID string, entryIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doomed := make(map[string]bool, len(entryIDs))
	for _, id := range entryIDs {
		doomed[id] = true
	}
	kept := r.entries[documentID][:0]
	for _, e := range r.entries[documentID] {
		if !doomed[e.EntryID] {
			kept = append(kept, e)
		}
	}
	r.entries[documentID] = kept
	return nil
}

func (r *fakeVersionRepo) UpsertEntries(_ context.Context, documentID string, entries []models.PersistedVersionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		replaced := false
		for i, existing := range r.entries[documentID] {
			if existing.EntryID == e.EntryID {
				r.entries[documentID][i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			r.entries[documentID] = append(r.entries[documentID], e)
		}
	}
	return nil
}

func (r *fakeVersionRepo) DeleteAllByDocument(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, documentID)
	return nil
}

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]models.Folder
	ops     *opLog
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]models.Folder)}
}

func (r *fakeFolderRepo) log(op string) {
	if r.ops != nil {
		r.ops.record(op)
	}
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var positions []int
	for _, f := range r.folders {
		if f.OwnerID == folder.OwnerID {
			positions = append(positions, f.Position)
		}
	}
	folder.Position = position.Next(positions)
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id, ownerID string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok || f.OwnerID != ownerID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (r *fakeFolderRepo) Update(_ context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.folders[folder.ID]
	if !ok || existing.OwnerID != folder.OwnerID {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	r.folders[folder.ID] = *folder
	return nil
}

func (r *fakeFolderRepo) Delete(_ context.Context, id, ownerID string) error {
	r.log("delete-folder")
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok || f.OwnerID != ownerID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeFolderRepo) Reorder(_ context.Context, ownerID string, moves []position.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range moves {
		f, ok := r.folders[m.ID]
		if !ok || f.OwnerID != ownerID {
			continue
		}
		f.Position = m.Position
		r.folders[m.ID] = f
	}
	return nil
}

type fakeCollectionRepo struct {
	mu          sync.Mutex
	collections map[string]models.Collection
	memberships map[string][]models.CollectionMembership // keyed by collection id
	ops         *opLog
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{
		collections: make(map[string]models.Collection),
		memberships: make(map[string][]models.CollectionMembership),
	}
}

func (r *fakeCollectionRepo) log(op string) {
	if r.ops != nil {
		r.ops.record(op)
	}
}

func (r *fakeCollectionRepo) Create(_ context.Context, collection *models.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var positions []int
	for _, c := range r.collections {
		if c.OwnerID == collection.OwnerID {
			positions = append(positions, c.Position)
		}
	}
	collection.Position = position.Next(positions)
	r.collections[collection.ID] = *collection
	return nil
}

func (r *fakeCollectionRepo) GetByID(_ context.Context, id, ownerID string) (*models.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[id]
	if !ok || c.OwnerID != ownerID {
		return nil, fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (r *fakeCollectionRepo) Update(_ context.Context, collection *models.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.collections[collection.ID]
	if !ok || existing.OwnerID != collection.OwnerID {
		return fmt.Errorf("collection %s: %w", collection.ID, domain.ErrNotFound)
	}
	r.collections[collection.ID] = *collection
	return nil
}

func (r *fakeCollectionRepo) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[id]
	if !ok || c.OwnerID != ownerID {
		return fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
	}
	delete(r.memberships, id)
	delete(r.collections, id)
	return nil
}

func (r *fakeCollectionRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Collection
	for _, c := range r.collections {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeCollectionRepo) Reorder(_ context.Context, ownerID string, moves []position.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range moves {
		c, ok := r.collections[m.ID]
		if !ok || c.OwnerID != ownerID {
			continue
		}
		c.Position = m.Position
		r.collections[m.ID] = c
	}
	return nil
}

func (r *fakeCollectionRepo) AddDocument(_ context.Context, collectionID, documentID string) error {
	r.log("add:" + collectionID)
	r.mu.Lock()
	defer r.mu.Unlock()
	var positions []int
	for _, m := range r.memberships[collectionID] {
		if m.DocumentID == documentID {
			return &domain.ConflictError{
				Message:      "document is already in this collection",
				ResourceType: "membership",
				ResourceID:   documentID,
			}
		}
		positions = append(positions, m.Position)
	}
	r.memberships[collectionID] = append(r.memberships[collectionID], models.CollectionMembership{
		CollectionID: collectionID,
		DocumentID:   documentID,
		Position:     position.Next(positions),
	})
	return nil
}

func (r *fakeCollectionRepo) RemoveDocument(_ context.Context, collectionID, documentID string) error {
	r.log("remove:" + collectionID)
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.memberships[collectionID][:0]
	for _, m := range r.memberships[collectionID] {
		if m.DocumentID != documentID {
			kept = append(kept, m)
		}
	}
	r.memberships[collectionID] = kept
	return nil
}

func (r *fakeCollectionRepo) ListDocumentIDs(_ context.Context, collectionID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := append([]models.CollectionMembership(nil), r.memberships[collectionID]...)
	sort.Slice(members, func(i, j int) bool { return members[i].Position < members[j].Position })
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.DocumentID
	}
	return ids, nil
}

func (r *fakeCollectionRepo) ListCollectionIDsForDocument(_ context.Context, ownerID, documentID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for collectionID, members := range r.memberships {
		c, ok := r.collections[collectionID]
		if !ok || c.OwnerID != ownerID {
			continue
		}
		for _, m := range members {
			if m.DocumentID == documentID {
				ids = append(ids, collectionID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeViewRepo struct {
	mu     sync.Mutex
	events []models.ViewEvent
}

func (r *fakeViewRepo) InsertEvent(_ context.Context, event *models.ViewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeViewRepo) eventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// opLog records the order of repository calls across fakes so tests can
// assert sequencing (unfolder before delete, removals before additions).
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) record(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}
