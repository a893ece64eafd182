package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/logger"
	"github.com/patel-jhanvi/amrap-gym/internal/metrics"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

var (
	ErrAlreadyMember      = errors.New("user is already a member of this gym")
	ErrGymFull            = errors.New("gym is at full capacity")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInvalidMembership  = errors.New("invalid membership")
)

// Notifier is told about membership changes after they are stored.
type Notifier interface {
	MembershipStarted(ctx context.Context, to, name, gymName string, joined time.Time) error
	MembershipEnded(ctx context.Context, to, name, gymName string) error
}

type Service interface {
	AddMembership(ctx context.Context, req MembershipRequest) (*Membership, error)
	RemoveMembership(ctx context.Context, req MembershipRequest) error
	GymsOfUser(ctx context.Context, userID string) ([]GymMembership, error)
	MembersOfGym(ctx context.Context, gymID string) ([]UserMembership, error)
}

type service struct {
	repo     Repository
	gymRepo  gym.Repository
	userRepo user.Repository
	notifier Notifier
}

// NewService wires the membership rules. notifier may be nil.
func NewService(repo Repository, gymRepo gym.Repository, userRepo user.Repository, notifier Notifier) Service {
	return &service{
		repo:     repo,
		gymRepo:  gymRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *service) AddMembership(ctx context.Context, req MembershipRequest) (*Membership, error) {
	if req.UserID == "" || req.GymID == "" {
		return nil, fmt.Errorf("%w: userId and gymId are required", ErrInvalidMembership)
	}

	m, err := s.repo.AddMembership(ctx, req.UserID, req.GymID)
	if err != nil {
		metrics.RecordMembershipChange("add", rejectionReason(err))
		return nil, err
	}
	metrics.RecordMembershipChange("add", "ok")

	logger.Info("membership added", "user_id", m.UserID, "gym_id", m.GymID)
	s.notify(ctx, req, func(u *user.User, g *gym.Gym) error {
		return s.notifier.MembershipStarted(ctx, u.Email, u.Name, g.Name, m.JoinDate)
	})

	return m, nil
}

func (s *service) RemoveMembership(ctx context.Context, req MembershipRequest) error {
	if req.UserID == "" || req.GymID == "" {
		return fmt.Errorf("%w: userId and gymId are required", ErrInvalidMembership)
	}

	if err := s.repo.RemoveMembership(ctx, req.UserID, req.GymID); err != nil {
		metrics.RecordMembershipChange("remove", rejectionReason(err))
		return err
	}
	metrics.RecordMembershipChange("remove", "ok")

	logger.Info("membership removed", "user_id", req.UserID, "gym_id", req.GymID)
	s.notify(ctx, req, func(u *user.User, g *gym.Gym) error {
		return s.notifier.MembershipEnded(ctx, u.Email, u.Name, g.Name)
	})

	return nil
}

func (s *service) GymsOfUser(ctx context.Context, userID string) ([]GymMembership, error) {
	return s.repo.GymsOfUser(ctx, userID)
}

func (s *service) MembersOfGym(ctx context.Context, gymID string) ([]UserMembership, error) {
	return s.repo.MembersOfGym(ctx, gymID)
}

// notify looks up the display names for an edge and hands them to send.
// Failures are logged only; the membership change has already been stored.
func (s *service) notify(ctx context.Context, req MembershipRequest, send func(*user.User, *gym.Gym) error) {
	if s.notifier == nil {
		return
	}

	u, err := s.userRepo.GetUserByID(ctx, req.UserID)
	if err != nil {
		logger.WithError(err).Warn("skipping membership notification", "user_id", req.UserID)
		return
	}
	g, err := s.gymRepo.GetGymByID(ctx, req.GymID)
	if err != nil {
		logger.WithError(err).Warn("skipping membership notification", "gym_id", req.GymID)
		return
	}

	if err := send(u, g); err != nil {
		logger.WithError(err).Error("failed to queue membership notification", "user_id", u.ID)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrGymFull):
		return "full"
	case errors.Is(err, ErrAlreadyMember):
		return "duplicate"
	case errors.Is(err, ErrMembershipNotFound),
		errors.Is(err, gym.ErrGymNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}
