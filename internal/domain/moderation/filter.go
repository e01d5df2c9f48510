package moderation

import (
	"context"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// Filter checks free text against the banned-word set using a multi-pattern
// matcher. The matcher is cached and rebuilt only when the word set version
// changes, so edits take effect on the next check rather than forcing a
// rebuild on every request.
type Filter struct {
	repo Repository

	mu           sync.RWMutex
	version      uint64
	builtVersion uint64
	built        bool
	words        []string
	matcher      *ahocorasick.Matcher
}

// NewFilter creates a content-policy filter.
func NewFilter(repo Repository) *Filter {
	return &Filter{repo: repo}
}

// Check scans text for banned words. It returns the first matched word, or
// the empty string when the text is clean. The scan order is deterministic
// for a fixed word set and input.
func (f *Filter) Check(ctx context.Context, text string) (string, error) {
	matcher, words, err := f.currentMatcher(ctx)
	if err != nil {
		return "", err
	}
	if matcher == nil {
		return "", nil
	}
	hits := matcher.Match([]byte(text))
	if len(hits) == 0 {
		return "", nil
	}
	return words[hits[0]], nil
}

// AddWord adds a word to the set and invalidates the cached matcher.
func (f *Filter) AddWord(ctx context.Context, word string) (*BannedWord, error) {
	existing, err := f.repo.FindByWord(ctx, word)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup banned word")
	}
	if existing != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "word already banned", nil)
	}
	w, err := f.repo.Add(ctx, word)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "add banned word")
	}
	f.invalidate()
	return w, nil
}

// RemoveWord deletes a word from the set and invalidates the cached matcher.
func (f *Filter) RemoveWord(ctx context.Context, id uint) error {
	if err := f.repo.Remove(ctx, id); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "remove banned word")
	}
	f.invalidate()
	return nil
}

// RemoveWordByText deletes a word given its text.
func (f *Filter) RemoveWordByText(ctx context.Context, word string) error {
	existing, err := f.repo.FindByWord(ctx, word)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup banned word")
	}
	if existing == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "banned word not found", nil)
	}
	return f.RemoveWord(ctx, existing.ID)
}

// ListWords returns banned words, paged.
func (f *Filter) ListWords(ctx context.Context, p query.Pagination) ([]*BannedWord, error) {
	words, err := f.repo.List(ctx, p)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list banned words")
	}
	return words, nil
}

func (f *Filter) invalidate() {
	f.mu.Lock()
	f.version++
	f.mu.Unlock()
}

func (f *Filter) currentMatcher(ctx context.Context) (*ahocorasick.Matcher, []string, error) {
	f.mu.RLock()
	if f.built && f.builtVersion == f.version {
		matcher, words := f.matcher, f.words
		f.mu.RUnlock()
		return matcher, words, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.built && f.builtVersion == f.version {
		return f.matcher, f.words, nil
	}

	words, err := f.repo.All(ctx)
	if err != nil {
		return nil, nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "load banned words")
	}
	f.words = words
	f.builtVersion = f.version
	f.built = true
	if len(words) == 0 {
		f.matcher = nil
		return nil, nil, nil
	}
	f.matcher = ahocorasick.NewStringMatcher(words)
	return f.matcher, f.words, nil
}
