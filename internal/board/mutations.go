package board

import (
	"context"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/cache"
	"github.com/davidcforbes/beads-kanban/internal/debug"
	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/validation"
)

// Mutation pipeline: every verb validates its arguments, invokes the
// backend, then invalidates the cache scope the change could have
// touched. Validation failures and read-only rejections abort before
// any subprocess is spawned. Mutations never retry; a retried create
// could duplicate records, and a timed-out write is ambiguous (the
// backend may have applied it), which the Timeout kind surfaces.

// writeGuard rejects mutations in read-only mode before any argument
// is even looked at.
func (b *Board) writeGuard(verb string) error {
	if b.opts.ReadOnly {
		return &backend.Error{
			Kind:   backend.KindReadOnly,
			Op:     verb,
			Detail: "board is in read-only mode",
		}
	}
	return nil
}

// invalidateDetails clears one issue's cached details. Exact match, so
// bd-4 never clips bd-42.
func (b *Board) invalidateDetails(id string) {
	detailsKey := cache.MakeKey("details", id)
	b.cache.InvalidateMatching(func(key string) bool {
		return key == detailsKey
	})
}

// invalidateCard clears one issue's details plus every column page,
// leaving other issues' details cached. For mutations that change what
// rows carry but cannot move an issue between columns.
func (b *Board) invalidateCard(id string) {
	b.invalidateDetails(id)
	b.cache.InvalidatePrefix("column/")
}

// CreateCard validates req and creates a new issue, returning it as
// the backend recorded it, ID assigned. A new issue can appear in any
// open column, so the whole cache goes.
func (b *Board) CreateCard(ctx context.Context, req backend.CreateRequest) (*types.Issue, error) {
	if err := b.writeGuard("create"); err != nil {
		return nil, err
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	issue, err := b.client.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	b.cache.Invalidate()
	debug.LogMutation("create", issue.ID, req.Title)
	return issue, nil
}

// UpdateFields applies the non-nil fields of req to one issue. At
// least one field must be set; an empty update is rejected locally
// rather than spending a subprocess on a no-op. Scheduling fields feed
// the ready predicate, so updates clear the whole cache.
func (b *Board) UpdateFields(ctx context.Context, req backend.UpdateRequest) (*types.Issue, error) {
	if err := b.writeGuard("update"); err != nil {
		return nil, err
	}
	if err := validation.IssueID(req.ID); err != nil {
		return nil, err
	}
	if req.IsZero() {
		return nil, &backend.Error{
			Kind:   backend.KindInvalidIdentifier,
			Op:     "update",
			Detail: "no fields to update",
		}
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	issue, err := b.client.Update(ctx, req)
	if err != nil {
		return nil, err
	}
	b.cache.Invalidate()
	debug.LogMutation("update", req.ID, "")
	return issue, nil
}

// SetStatus moves an issue to a new status. A move can enter or leave
// any column, including the predicate ones.
func (b *Board) SetStatus(ctx context.Context, id string, status types.Status) (*types.Issue, error) {
	if err := b.writeGuard("move"); err != nil {
		return nil, err
	}
	if err := validation.IssueID(id); err != nil {
		return nil, err
	}
	if err := validation.Status(status); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	issue, err := b.client.Update(ctx, backend.UpdateRequest{ID: id, Status: &status})
	if err != nil {
		return nil, err
	}
	b.cache.Invalidate()
	debug.LogMutation("move", id, string(status))
	return issue, nil
}

// CloseCard closes an issue with an optional reason.
func (b *Board) CloseCard(ctx context.Context, id, reason string) (*types.Issue, error) {
	if err := b.writeGuard("close"); err != nil {
		return nil, err
	}
	if err := validation.IssueID(id); err != nil {
		return nil, err
	}
	if err := validation.FreeText("close reason", reason, types.MaxTextLen); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	issue, err := b.client.Close(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	b.cache.Invalidate()
	debug.LogMutation("close", id, reason)
	return issue, nil
}

// AddComment appends a comment. Comments never appear on column rows
// and never move an issue, so only this card's details are cleared.
func (b *Board) AddComment(ctx context.Context, id, text string) (*types.Comment, error) {
	if err := b.writeGuard("comment"); err != nil {
		return nil, err
	}
	if err := validation.IssueID(id); err != nil {
		return nil, err
	}
	if err := validation.CommentText(text); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	comment, err := b.client.AddComment(ctx, id, text)
	if err != nil {
		return nil, err
	}
	b.invalidateDetails(id)
	debug.LogMutation("comment", id, "")
	return comment, nil
}

// AddLabel attaches a label to an issue. Labels ride on column rows
// but cannot move an issue, so column pages and this card's details
// are cleared while other cards stay cached.
func (b *Board) AddLabel(ctx context.Context, id, label string) (*types.Issue, error) {
	if err := b.writeGuard("label-add"); err != nil {
		return nil, err
	}
	if err := validation.IssueID(id); err != nil {
		return nil, err
	}
	if err := validation.Label(label); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	issue, err := b.client.Update(ctx, backend.UpdateRequest{ID: id, AddLabels: []string{label}})
	if err != nil {
		return nil, err
	}
	b.invalidateCard(id)
	debug.LogMutation("label-add", id, label)
	return issue, nil
}

// RemoveLabel detaches a label from an issue.
func (b *Board) RemoveLabel(ctx context.Context, id, label string) (*types.Issue, error) {
	if err := b.writeGuard("label-remove"); err != nil {
		return nil, err
	}
	if err := validation.IssueID(id); err != nil {
		return nil, err
	}
	if err := validation.Label(label); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	issue, err := b.client.Update(ctx, backend.UpdateRequest{ID: id, RemoveLabels: []string{label}})
	if err != nil {
		return nil, err
	}
	b.invalidateCard(id)
	debug.LogMutation("label-remove", id, label)
	return issue, nil
}

// AddDependency records that id depends on dependsOn. Both halves of
// the edge are validated before either is sent; an empty depType keeps
// the backend default (blocks). Dependency edges feed the ready and
// blocked predicates, so the whole cache goes.
func (b *Board) AddDependency(ctx context.Context, id, dependsOn string, depType types.DependencyType) error {
	if err := b.writeGuard("dep-add"); err != nil {
		return err
	}
	if err := validation.IssueIDs(id, dependsOn); err != nil {
		return err
	}
	if depType != "" {
		if err := validation.DependencyType(depType); err != nil {
			return err
		}
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := b.client.AddDependency(ctx, id, dependsOn, depType); err != nil {
		return err
	}
	b.cache.Invalidate()
	debug.LogMutation("dep-add", id, dependsOn)
	return nil
}

// RemoveDependency deletes the edge between id and dependsOn.
func (b *Board) RemoveDependency(ctx context.Context, id, dependsOn string) error {
	if err := b.writeGuard("dep-remove"); err != nil {
		return err
	}
	if err := validation.IssueIDs(id, dependsOn); err != nil {
		return err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := b.client.RemoveDependency(ctx, id, dependsOn); err != nil {
		return err
	}
	b.cache.Invalidate()
	debug.LogMutation("dep-remove", id, dependsOn)
	return nil
}

// SetParent reparents an issue. Parent edges ride the same dependency
// machinery as blockers, so the conservative full clear applies.
func (b *Board) SetParent(ctx context.Context, id, parent string) (*types.Issue, error) {
	if err := b.writeGuard("parent-set"); err != nil {
		return nil, err
	}
	if err := validation.IssueIDs(id, parent); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	issue, err := b.client.Update(ctx, backend.UpdateRequest{ID: id, Parent: &parent})
	if err != nil {
		return nil, err
	}
	b.cache.Invalidate()
	debug.LogMutation("parent-set", id, parent)
	return issue, nil
}

// RemoveParent clears an issue's parent. The explicit empty string is
// the backend's clear convention.
func (b *Board) RemoveParent(ctx context.Context, id string) (*types.Issue, error) {
	if err := b.writeGuard("parent-remove"); err != nil {
		return nil, err
	}
	if err := validation.IssueID(id); err != nil {
		return nil, err
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	empty := ""
	issue, err := b.client.Update(ctx, backend.UpdateRequest{ID: id, Parent: &empty})
	if err != nil {
		return nil, err
	}
	b.cache.Invalidate()
	debug.LogMutation("parent-remove", id, "")
	return issue, nil
}

func validateCreate(req backend.CreateRequest) error {
	if err := validation.Title(req.Title); err != nil {
		return err
	}
	if err := validation.FreeText("description", req.Description, types.MaxTextLen); err != nil {
		return err
	}
	if err := validation.FreeText("design", req.Design, types.MaxTextLen); err != nil {
		return err
	}
	if err := validation.FreeText("acceptance criteria", req.AcceptanceCriteria, types.MaxTextLen); err != nil {
		return err
	}
	if err := validation.FreeText("notes", req.Notes, types.MaxTextLen); err != nil {
		return err
	}
	if req.IssueType != "" {
		if err := validation.IssueType(req.IssueType); err != nil {
			return err
		}
	}
	if req.Priority != nil {
		if err := validation.Priority(*req.Priority); err != nil {
			return err
		}
	}
	if err := validation.Assignee(req.Assignee); err != nil {
		return err
	}
	if err := validation.ExternalRef(req.ExternalRef); err != nil {
		return err
	}
	if req.EstimatedMinutes != nil {
		if err := validation.EstimatedMinutes(*req.EstimatedMinutes); err != nil {
			return err
		}
	}
	if err := validation.Labels(req.Labels); err != nil {
		return err
	}
	if req.Parent != "" {
		if err := validation.IssueID(req.Parent); err != nil {
			return err
		}
	}
	return nil
}

func validateUpdate(req backend.UpdateRequest) error {
	if req.Title != nil {
		if err := validation.Title(*req.Title); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := validation.FreeText("description", *req.Description, types.MaxTextLen); err != nil {
			return err
		}
	}
	if req.Design != nil {
		if err := validation.FreeText("design", *req.Design, types.MaxTextLen); err != nil {
			return err
		}
	}
	if req.AcceptanceCriteria != nil {
		if err := validation.FreeText("acceptance criteria", *req.AcceptanceCriteria, types.MaxTextLen); err != nil {
			return err
		}
	}
	if req.Notes != nil {
		if err := validation.FreeText("notes", *req.Notes, types.MaxTextLen); err != nil {
			return err
		}
	}
	if req.Status != nil {
		if err := validation.Status(*req.Status); err != nil {
			return err
		}
	}
	if req.Priority != nil {
		if err := validation.Priority(*req.Priority); err != nil {
			return err
		}
	}
	if req.IssueType != nil {
		if err := validation.IssueType(*req.IssueType); err != nil {
			return err
		}
	}
	if req.Assignee != nil {
		if err := validation.Assignee(*req.Assignee); err != nil {
			return err
		}
	}
	if req.ExternalRef != nil {
		if err := validation.ExternalRef(*req.ExternalRef); err != nil {
			return err
		}
	}
	if req.EstimatedMinutes != nil {
		if err := validation.EstimatedMinutes(*req.EstimatedMinutes); err != nil {
			return err
		}
	}
	if req.Parent != nil && *req.Parent != "" {
		if err := validation.IssueID(*req.Parent); err != nil {
			return err
		}
	}
	if req.DueAt != nil {
		if err := validation.Schedule("due date", *req.DueAt); err != nil {
			return err
		}
	}
	if req.DeferUntil != nil {
		if err := validation.Schedule("defer date", *req.DeferUntil); err != nil {
			return err
		}
	}
	if err := validation.Labels(req.AddLabels); err != nil {
		return err
	}
	if err := validation.Labels(req.RemoveLabels); err != nil {
		return err
	}
	return validation.Labels(req.SetLabels)
}
