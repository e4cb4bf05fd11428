package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/repository"
)

var (
	ErrExhibitionNotFound = repository.ErrExhibitionNotFound

	ErrNotAuthorized    = errors.New("user is not authorized to perform this action")
	ErrExhibitionClosed = errors.New("exhibition is cancelled or completed")
)

type ExhibitionRepository interface {
	Create(ctx context.Context, exhibition domain.Exhibition) (domain.Exhibition, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Exhibition, error)
	FindAll(ctx context.Context) ([]domain.Exhibition, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExhibitionStatus) error
	UnitExists(ctx context.Context, id uuid.UUID) (bool, error)
	FindAmenities(ctx context.Context, ids []uuid.UUID) ([]domain.Amenity, error)
}

type ExhibitionService struct {
	repo ExhibitionRepository
}

func NewExhibitionService(repo ExhibitionRepository) *ExhibitionService {
	return &ExhibitionService{
		repo: repo,
	}
}

func (s *ExhibitionService) CreateExhibition(ctx context.Context, exhibition domain.Exhibition, organiser domain.User) (domain.Exhibition, error) {
	if !organiser.CanReview() {
		return domain.Exhibition{}, ErrNotAuthorized
	}

	exhibition.OrganiserID = organiser.ID
	exhibition.Status = domain.ExhibitionDraft

	created, err := s.repo.Create(ctx, exhibition)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ExhibitionService) GetExhibition(ctx context.Context, id uuid.UUID) (domain.Exhibition, error) {
	exhibition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return exhibition, nil
}

func (s *ExhibitionService) ListExhibitions(ctx context.Context) ([]domain.Exhibition, error) {
	exhibitions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return exhibitions, nil
}

func (s *ExhibitionService) PublishExhibition(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Exhibition, error) {
	return s.moveStatus(ctx, id, actor, domain.ExhibitionDraft, domain.ExhibitionPublished)
}

func (s *ExhibitionService) CompleteExhibition(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Exhibition, error) {
	return s.moveStatus(ctx, id, actor, domain.ExhibitionPublished, domain.ExhibitionCompleted)
}

// CancelExhibition closes a draft or published exhibition. Pending
// applications are left untouched; organisers void them explicitly
// through the applications surface.
func (s *ExhibitionService) CancelExhibition(ctx context.Context, id uuid.UUID, actor domain.User) (domain.Exhibition, error) {
	exhibition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.authorize(exhibition, actor); err != nil {
		return domain.Exhibition{}, err
	}
	if !exhibition.IsEditable() {
		return domain.Exhibition{}, ErrExhibitionClosed
	}

	if err = s.repo.UpdateStatus(ctx, id, domain.ExhibitionCancelled); err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	exhibition.Status = domain.ExhibitionCancelled
	return exhibition, nil
}

func (s *ExhibitionService) moveStatus(ctx context.Context, id uuid.UUID, actor domain.User, from, to domain.ExhibitionStatus) (domain.Exhibition, error) {
	exhibition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.authorize(exhibition, actor); err != nil {
		return domain.Exhibition{}, err
	}
	if exhibition.Status != from {
		return domain.Exhibition{}, ErrExhibitionClosed
	}

	if err = s.repo.UpdateStatus(ctx, id, to); err != nil {
		return domain.Exhibition{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	exhibition.Status = to
	return exhibition, nil
}

// Only the owning organiser or a manager may mutate an exhibition.
func (s *ExhibitionService) authorize(exhibition domain.Exhibition, actor domain.User) error {
	if actor.Role == domain.RoleManager {
		return nil
	}
	if actor.Role == domain.RoleOrganiser && actor.ID == exhibition.OrganiserID {
		return nil
	}

	return ErrNotAuthorized
}
