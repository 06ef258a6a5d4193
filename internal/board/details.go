package board

import (
	"context"
	"sort"

	"github.com/davidcforbes/beads-kanban/internal/cache"
	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/util"
	"github.com/davidcforbes/beads-kanban/internal/validation"
)

// CardDetails fetches the full record for one issue: text fields,
// labels, comments, and the direct dependency neighborhood. Loaded on
// demand when a card is opened, never during column loading, and
// cached under the same TTL as column pages.
func (b *Board) CardDetails(ctx context.Context, id string) (*types.CardDetails, error) {
	if err := validation.IssueID(id); err != nil {
		return nil, err
	}

	cacheKey := cache.MakeKey("details", id)
	if v, ok := b.cache.Get(cacheKey); ok {
		if d, ok := v.(*types.CardDetails); ok {
			return d, nil
		}
	}

	v, _, err := b.dedup.Execute(cacheKey, func() (any, error) {
		ticket := b.cache.Begin(cacheKey)
		release, err := b.acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer release()

		var raw *types.IssueDetails
		err = retryConnectionLost(ctx, func() error {
			d, err := b.client.Show(ctx, id)
			if err != nil {
				return err
			}
			raw = d
			return nil
		})
		if err != nil {
			return nil, err
		}
		details := projectDetails(raw)
		b.cache.SetLatest(cacheKey, ticket, details)
		return details, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.CardDetails), nil
}

// projectDetails splits the show payload's two dependency directions
// into the board's neighborhood buckets. Dependencies are edges from
// this issue (what it waits on, its parent); dependents point back at
// it (what it holds up, its children). Association edges from either
// direction land in Related. The edge set may be cyclic; only direct
// neighbors are reported, so cycles cost nothing here.
func projectDetails(raw *types.IssueDetails) *types.CardDetails {
	d := &types.CardDetails{
		Issue:    &raw.Issue,
		Labels:   raw.Labels,
		Comments: raw.Comments,
	}
	if raw.Parent != nil {
		d.Parent = *raw.Parent
	}

	seen := make(map[string]bool)
	for _, dep := range raw.Dependencies {
		switch dep.DependencyType {
		case types.DepParentChild:
			if d.Parent == "" {
				d.Parent = dep.ID
			}
		case types.DepBlocks:
			d.Blockers = append(d.Blockers, dep)
		default:
			if !seen[dep.ID] {
				seen[dep.ID] = true
				d.Related = append(d.Related, dep)
			}
		}
	}
	for _, dep := range raw.Dependents {
		switch dep.DependencyType {
		case types.DepParentChild:
			d.Children = append(d.Children, dep)
		case types.DepBlocks:
			d.Blocks = append(d.Blocks, dep)
		default:
			if !seen[dep.ID] {
				seen[dep.ID] = true
				d.Related = append(d.Related, dep)
			}
		}
	}

	sortNeighbors(d.Blockers)
	sortNeighbors(d.Blocks)
	sortNeighbors(d.Children)
	sortNeighbors(d.Related)
	return d
}

// sortNeighbors orders a neighborhood numerically by issue number with
// a lexical fallback, so bd-9 sorts before bd-10 and hash-suffixed IDs
// stay grouped.
func sortNeighbors(list []*types.IssueWithDependencyMetadata) {
	sort.Slice(list, func(i, j int) bool {
		return idLess(list[i].ID, list[j].ID)
	})
}

func idLess(a, b string) bool {
	na, nb := util.ExtractIssueNumber(a), util.ExtractIssueNumber(b)
	if na > 0 && nb > 0 && na != nb {
		return na < nb
	}
	return a < b
}
