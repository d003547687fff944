package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"together-backend/internal/models"
	"together-backend/internal/repository"
)

// Pairing violations the HTTP layer maps to 409/403.
var (
	ErrSelfPair      = errors.New("cannot create pair with yourself")
	ErrAlreadyPaired = errors.New("user is already in a pair")
	ErrPartnerPaired = errors.New("partner is already in a pair")
	ErrNotPairMember = errors.New("user is not a member of this pair")
)

// PairService handles pair-related business logic
type PairService struct {
	pairRepo *repository.PairRepository
	userRepo *repository.UserRepository
}

// NewPairService creates a new pair service
func NewPairService(pairRepo *repository.PairRepository, userRepo *repository.UserRepository) *PairService {
	return &PairService{
		pairRepo: pairRepo,
		userRepo: userRepo,
	}
}

// CreatePair creates a new pair between two users
func (s *PairService) CreatePair(ctx context.Context, userAID, partnerCode string) (*models.Pair, error) {
	if len(partnerCode) != 6 {
		return nil, fmt.Errorf("partner code must be 6 characters")
	}

	partnerUser, err := s.userRepo.GetByCode(ctx, partnerCode)
	if err != nil {
		return nil, fmt.Errorf("partner not found: %w", err)
	}

	userBID := partnerUser.ID

	if userAID == userBID {
		return nil, ErrSelfPair
	}

	hasPair, err := s.pairRepo.UserHasPair(ctx, userAID)
	if err != nil {
		return nil, fmt.Errorf("failed to check if user has pair: %w", err)
	}
	if hasPair {
		return nil, ErrAlreadyPaired
	}

	partnerHasPair, err := s.pairRepo.UserHasPair(ctx, userBID)
	if err != nil {
		return nil, fmt.Errorf("failed to check if partner has pair: %w", err)
	}
	if partnerHasPair {
		return nil, ErrPartnerPaired
	}

	// user_a_id is the lexicographically smaller id for consistency
	if userAID > userBID {
		userAID, userBID = userBID, userAID
	}

	pair := &models.Pair{
		UserAID:   userAID,
		UserBID:   userBID,
		CreatedAt: time.Now(),
	}

	if err := s.pairRepo.Create(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to create pair: %w", err)
	}

	return pair, nil
}

// DeletePair deletes a pair if the user is a member
func (s *PairService) DeletePair(ctx context.Context, pairID, userID string) error {
	pair, err := s.pairRepo.GetByID(ctx, pairID)
	if err != nil {
		return fmt.Errorf("pair not found: %w", err)
	}

	if pair.UserAID != userID && pair.UserBID != userID {
		return ErrNotPairMember
	}

	if err := s.pairRepo.Delete(ctx, pairID); err != nil {
		return fmt.Errorf("failed to delete pair: %w", err)
	}

	return nil
}

// GetPairByUserID gets the pair for a user
func (s *PairService) GetPairByUserID(ctx context.Context, userID string) (*models.Pair, error) {
	return s.pairRepo.GetByUserID(ctx, userID)
}

// PartnerID returns the other member of the user's pair, or "" when unpaired.
func (s *PairService) PartnerID(ctx context.Context, userID string) string {
	pair, err := s.pairRepo.GetByUserID(ctx, userID)
	if err != nil {
		return ""
	}
	if pair.UserAID == userID {
		return pair.UserBID
	}
	return pair.UserAID
}
