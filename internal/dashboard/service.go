package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/trustboard/internal/badge"
	"github.com/ppiankov/trustboard/internal/cache"
	"github.com/ppiankov/trustboard/internal/model"
)

// Backend is the subset of the API client the pages read from
type Backend interface {
	Stats(ctx context.Context) (model.LeaderboardStats, error)
	List(ctx context.Context) ([]model.InfluencerListItem, error)
	Influencer(ctx context.Context, id int) (model.InfluencerDetail, error)
}

// Service loads pages through the shared query cache
type Service struct {
	backend Backend
	queries *cache.Queries
	logger  *zap.Logger

	mu        sync.Mutex
	detailID  int
	detailSeq uint64
}

// NewService creates a Service
func NewService(backend Backend, queries *cache.Queries, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend: backend,
		queries: queries,
		logger:  logger.Named("dashboard"),
	}
}

// Leaderboard loads stats and list in parallel and composes the page
func (s *Service) Leaderboard(ctx context.Context) LeaderboardPage {
	var (
		stats cache.State[model.LeaderboardStats]
		list  cache.State[[]model.InfluencerListItem]
		g     errgroup.Group
	)

	g.Go(func() error {
		stats = cache.Fetch(ctx, s.queries, cache.StatsKey, s.backend.Stats)
		return nil
	})
	g.Go(func() error {
		list = cache.Fetch(ctx, s.queries, cache.ListKey, s.backend.List)
		return nil
	})
	_ = g.Wait()

	if stats.Err != nil && list.Err == nil {
		s.logger.Warn("stats unavailable, showing leaderboard without them", zap.Error(stats.Err))
	}
	return ComposeLeaderboard(stats, list)
}

// PeekLeaderboard composes the page from whatever is cached right now
func (s *Service) PeekLeaderboard() LeaderboardPage {
	return ComposeLeaderboard(
		cache.Peek[model.LeaderboardStats](s.queries, cache.StatsKey),
		cache.Peek[[]model.InfluencerListItem](s.queries, cache.ListKey),
	)
}

// RefreshLeaderboard refetches both resources, keeping what is shown
// until the new results arrive
func (s *Service) RefreshLeaderboard(ctx context.Context) LeaderboardPage {
	var g errgroup.Group
	g.Go(func() error {
		cache.Refetch(ctx, s.queries, cache.StatsKey, s.backend.Stats)
		return nil
	})
	g.Go(func() error {
		cache.Refetch(ctx, s.queries, cache.ListKey, s.backend.List)
		return nil
	})
	_ = g.Wait()
	return s.PeekLeaderboard()
}

// Detail shows influencer id. Moving to a different id invalidates the
// previous id's entry; if another Detail call moves on while this one is
// loading, the result reflects the id now shown.
func (s *Service) Detail(ctx context.Context, id int) DetailPage {
	s.mu.Lock()
	if s.detailID != 0 && s.detailID != id {
		s.queries.Invalidate(cache.DetailKey(s.detailID))
	}
	s.detailID = id
	s.detailSeq++
	seq := s.detailSeq
	s.mu.Unlock()

	state := cache.Fetch(ctx, s.queries, cache.DetailKey(id), func(ctx context.Context) (model.InfluencerDetail, error) {
		return s.backend.Influencer(ctx, id)
	})

	s.mu.Lock()
	current := s.detailSeq == seq
	s.mu.Unlock()
	if !current {
		s.logger.Debug("detail superseded", zap.Int("id", id))
		return s.PeekDetail()
	}
	if state.HasData {
		s.warnOverlaps(id, state.Data.Claims)
	}
	return ComposeDetail(id, state)
}

// warnOverlaps logs journals a claim lists under more than one outcome.
// The page still renders them by badge precedence.
func (s *Service) warnOverlaps(id int, claims []model.Claim) {
	for _, c := range claims {
		if overlaps := badge.Overlaps(c); len(overlaps) > 0 {
			s.logger.Warn("claim lists journals under conflicting outcomes",
				zap.Int("influencer", id),
				zap.String("claim", c.Text),
				zap.Strings("journals", overlaps))
		}
	}
}

// PeekDetail composes the detail page for the id currently shown
func (s *Service) PeekDetail() DetailPage {
	s.mu.Lock()
	id := s.detailID
	s.mu.Unlock()
	return ComposeDetail(id, cache.Peek[model.InfluencerDetail](s.queries, cache.DetailKey(id)))
}
