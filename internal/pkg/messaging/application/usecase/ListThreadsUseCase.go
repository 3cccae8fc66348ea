package usecase

import (
	"context"
	"fmt"

	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
)

// ListThreadsInput narrows and pages the caller's thread listing.
type ListThreadsInput struct {
	UserID string
	Search string
	Status string // "", "all", "archived", "unread"
	Page   int
	Limit  int
}

// ListThreadsOutput is one page of summaries plus paging metadata. Total
// counts membership rows before the unread post-filter: unread is derived,
// not a stored predicate.
type ListThreadsOutput struct {
	Threads []messaging.ThreadSummary
	Page    int
	Limit   int
	Total   int
}

// ListThreadsUseCase returns the caller's threads, most recently updated
// first. Listing is scoped by active membership, so it needs no per-thread
// guard.
type ListThreadsUseCase struct {
	Threads repository.ThreadRepository
}

func NewListThreadsUseCase(threads repository.ThreadRepository) *ListThreadsUseCase {
	return &ListThreadsUseCase{Threads: threads}
}

func (uc *ListThreadsUseCase) Execute(ctx context.Context, in ListThreadsInput) (*ListThreadsOutput, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", messaging.ErrValidation)
	}
	switch in.Status {
	case "", "all", "archived", "unread":
	default:
		return nil, fmt.Errorf("%w: unknown status %q", messaging.ErrValidation, in.Status)
	}
	if in.Page <= 0 {
		in.Page = 1
	}
	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}

	summaries, total, err := uc.Threads.ListThreadSummaries(ctx, in.UserID, repository.ThreadQuery{
		Search: in.Search,
		Status: in.Status,
		Page:   in.Page,
		Limit:  in.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.Status == "unread" {
		filtered := make([]messaging.ThreadSummary, 0, len(summaries))
		for _, s := range summaries {
			if s.UnreadCount > 0 {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}

	return &ListThreadsOutput{Threads: summaries, Page: in.Page, Limit: in.Limit, Total: total}, nil
}
