// Package business exposes the read side of the business catalog plus
// the admin seeding path.
package business

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
	"github.com/ougirez/bizmap/internal/pkg/logger"
	"github.com/ougirez/bizmap/internal/pkg/store"
)

type Service struct {
	store store.Store
}

func NewBusinessService(s store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) List(ctx context.Context, req *dto.ListBusinessesRequest) ([]*domain.Business, error) {
	return s.store.ListBusinesses(ctx, store.ListBusinessesOpts{
		State: req.State,
		City:  req.City,
		Skip:  req.Skip,
		Limit: req.Limit,
	})
}

func (s *Service) ListInViewport(ctx context.Context, req *dto.ViewportRequest) ([]*domain.Business, error) {
	if req.South > req.North {
		return nil, fmt.Errorf("south %f above north %f", req.South, req.North)
	}

	return s.store.ListBusinessesInViewport(ctx, store.ViewportOpts{
		South: req.South,
		North: req.North,
		West:  req.West,
		East:  req.East,
		Limit: req.Limit,
	})
}

func (s *Service) Search(ctx context.Context, req *dto.SearchRequest) ([]*domain.Business, error) {
	return s.store.SearchBusinesses(ctx, req.Query, req.Skip, req.Limit)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	return s.store.GetBusinessByID(ctx, id)
}

// ListReviews returns the raw reviews behind a business, newest first.
// The business is resolved first so a bad id is a 404, not an empty
// list.
func (s *Service) ListReviews(ctx context.Context, businessID string, req *dto.ListReviewsRequest) ([]*domain.Review, error) {
	if _, err := s.store.GetBusinessByID(ctx, businessID); err != nil {
		return nil, fmt.Errorf("get business %s: %w", businessID, err)
	}

	return s.store.ListReviewsByBusiness(ctx, businessID, req.Skip, req.Limit)
}

func (s *Service) ListStates(ctx context.Context) ([]string, error) {
	return s.store.ListStates(ctx)
}

func (s *Service) ListCities(ctx context.Context, state string) ([]string, error) {
	return s.store.ListCities(ctx, state)
}

func (s *Service) LocationsSummary(ctx context.Context) (*dto.LocationsSummaryResponse, error) {
	states, err := s.store.LocationsSummary(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.LocationsSummaryResponse{States: states}, nil
}

// Seed bulk-imports the NDJSON dataset files. Either path may be
// empty; malformed lines are counted and skipped, not fatal.
func (s *Service) Seed(ctx context.Context, businessPath, reviewPath string) (*dto.SeedResponse, error) {
	resp := &dto.SeedResponse{}

	if businessPath != "" {
		businesses, err := readNDJSON[domain.Business](ctx, businessPath)
		if err != nil {
			return nil, fmt.Errorf("read businesses: %w", err)
		}

		inserted, err := s.store.InsertBusinesses(ctx, businesses)
		if err != nil {
			return nil, fmt.Errorf("insert businesses: %w", err)
		}
		resp.Businesses = int(inserted)
	}

	if reviewPath != "" {
		reviews, err := readNDJSON[domain.Review](ctx, reviewPath)
		if err != nil {
			return nil, fmt.Errorf("read reviews: %w", err)
		}

		inserted, err := s.store.InsertReviews(ctx, reviews)
		if err != nil {
			return nil, fmt.Errorf("insert reviews: %w", err)
		}
		resp.Reviews = int(inserted)
	}

	return resp, nil
}

func readNDJSON[T any](ctx context.Context, path string) ([]*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	var (
		out     []*T
		skipped int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		item := new(T)
		if err := sonic.UnmarshalString(line, item); err != nil {
			skipped++
			continue
		}
		out = append(out, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Err: %w", err)
	}

	if skipped > 0 {
		logger.Warnf(ctx, "%s: skipped %d malformed lines", path, skipped)
	}
	return out, nil
}
