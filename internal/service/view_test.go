package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitForViewCount(t *testing.T, docRepo *fakeDocumentRepo, id string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		doc, err := docRepo.GetByID(context.Background(), id)
		if err == nil && doc.ViewCount == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	doc, _ := docRepo.GetByID(context.Background(), id)
	t.Fatalf("ViewCount = %d, want %d", doc.ViewCount, want)
}

func TestViewService_RecordsEventAndIncrementsCounter(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	viewRepo := &fakeViewRepo{}
	docSvc := newDocumentService(docRepo, newFakeVersionRepo())
	viewSvc := NewViewService(viewRepo, docRepo, testLogger())

	doc := mustCreate(t, docSvc, "alice", testHistory(entry("a", "v1")))

	viewer := "bob"
	if err := viewSvc.RecordView(context.Background(), doc.ID, &viewer); err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if err := viewSvc.RecordView(context.Background(), doc.ID, nil); err != nil {
		t.Fatalf("anonymous RecordView: %v", err)
	}

	if viewRepo.eventCount() != 2 {
		t.Errorf("events = %d, want 2", viewRepo.eventCount())
	}
	waitForViewCount(t, docRepo, doc.ID, 2)
}

func TestViewService_CounterFailureDoesNotFailRecord(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	viewRepo := &fakeViewRepo{}
	docSvc := newDocumentService(docRepo, newFakeVersionRepo())
	viewSvc := NewViewService(viewRepo, docRepo, testLogger())

	doc := mustCreate(t, docSvc, "alice", testHistory(entry("a", "v1")))
	docRepo.counterErr = errors.New("connection reset")

	if err := viewSvc.RecordView(context.Background(), doc.ID, nil); err != nil {
		t.Fatalf("RecordView failed on counter error: %v", err)
	}
	if viewRepo.eventCount() != 1 {
		t.Errorf("events = %d, want 1", viewRepo.eventCount())
	}
}
