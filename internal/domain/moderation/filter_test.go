package moderation

import (
	"context"
	"testing"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

type fakeRepo struct {
	words    map[uint]string
	nextID   uint
	allCalls int
}

func newFakeRepo(words ...string) *fakeRepo {
	r := &fakeRepo{words: make(map[uint]string)}
	for _, w := range words {
		r.nextID++
		r.words[r.nextID] = w
	}
	return r
}

func (r *fakeRepo) Add(_ context.Context, word string) (*BannedWord, error) {
	r.nextID++
	r.words[r.nextID] = word
	return &BannedWord{ID: r.nextID, Word: word}, nil
}

func (r *fakeRepo) FindByWord(_ context.Context, word string) (*BannedWord, error) {
	for id, w := range r.words {
		if w == word {
			return &BannedWord{ID: id, Word: w}, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Remove(_ context.Context, id uint) error {
	delete(r.words, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ query.Pagination) ([]*BannedWord, error) {
	var out []*BannedWord
	for id, w := range r.words {
		out = append(out, &BannedWord{ID: id, Word: w})
	}
	return out, nil
}

func (r *fakeRepo) All(_ context.Context) ([]string, error) {
	r.allCalls++
	out := make([]string, 0, len(r.words))
	for id := uint(1); id <= r.nextID; id++ {
		if w, ok := r.words[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func TestCheckFindsEmbeddedWord(t *testing.T) {
	f := NewFilter(newFakeRepo("badword", "worse"))
	matched, err := f.Check(context.Background(), "contains a badword inside")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != "badword" {
		t.Fatalf("expected badword, got %q", matched)
	}
}

func TestCheckCleanText(t *testing.T) {
	f := NewFilter(newFakeRepo("badword"))
	matched, err := f.Check(context.Background(), "perfectly fine text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != "" {
		t.Fatalf("expected no match, got %q", matched)
	}
}

func TestCheckEmptyWordSet(t *testing.T) {
	f := NewFilter(newFakeRepo())
	matched, err := f.Check(context.Background(), "anything goes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != "" {
		t.Fatalf("expected no match, got %q", matched)
	}
}

func TestMatcherCachedAcrossChecks(t *testing.T) {
	repo := newFakeRepo("badword")
	f := NewFilter(repo)
	for i := 0; i < 5; i++ {
		if _, err := f.Check(context.Background(), "text"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if repo.allCalls != 1 {
		t.Fatalf("expected a single matcher build, got %d", repo.allCalls)
	}
}

func TestAddWordTakesEffectOnNextCheck(t *testing.T) {
	repo := newFakeRepo()
	f := NewFilter(repo)

	if matched, _ := f.Check(context.Background(), "fresh word"); matched != "" {
		t.Fatalf("expected no match before add, got %q", matched)
	}
	if _, err := f.AddWord(context.Background(), "fresh"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matched, err := f.Check(context.Background(), "fresh word")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched != "fresh" {
		t.Fatalf("expected fresh, got %q", matched)
	}
}

func TestAddWordDuplicateConflict(t *testing.T) {
	f := NewFilter(newFakeRepo("badword"))
	_, err := f.AddWord(context.Background(), "badword")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRemoveWordByText(t *testing.T) {
	f := NewFilter(newFakeRepo("badword"))
	if err := f.RemoveWordByText(context.Background(), "badword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched, _ := f.Check(context.Background(), "a badword here"); matched != "" {
		t.Fatalf("expected no match after removal, got %q", matched)
	}

	err := f.RemoveWordByText(context.Background(), "missing")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
