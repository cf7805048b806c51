package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"embervite/internal/domain"
)

type memberService struct {
	memberRepo     domain.MemberRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewMemberService(memberRepo domain.MemberRepository, timeout time.Duration) domain.MemberService {
	return &memberService{memberRepo: memberRepo, contextTimeout: timeout, now: time.Now}
}

func (s *memberService) ownedMember(ctx context.Context, memberID, ownerID string) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	if member.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (s *memberService) ListMembers(ctx context.Context, ownerID string) ([]*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	members, err := s.memberRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []*domain.Member{}
	}
	return members, nil
}

func (s *memberService) GetMember(ctx context.Context, memberID, ownerID string) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.ownedMember(ctx, memberID, ownerID)
}

func (s *memberService) SaveMember(ctx context.Context, memberID, ownerID string, in domain.MemberInput) (*domain.Member, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return nil, false, &domain.ValidationError{Messages: errs}
	}

	now := s.now().UTC()
	if memberID == domain.NewRecordID {
		member := &domain.Member{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
		in.Apply(member)
		if err := s.memberRepo.Create(ctx, member); err != nil {
			return nil, false, fmt.Errorf("create member: %w", err)
		}
		return member, true, nil
	}

	member, err := s.ownedMember(ctx, memberID, ownerID)
	if err != nil {
		return nil, false, err
	}
	in.Apply(member)
	member.UpdatedAt = now
	if err := s.memberRepo.Update(ctx, member); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("update member: %w", err)
	}
	return member, false, nil
}

func (s *memberService) DeleteMember(ctx context.Context, memberID, ownerID string) (*domain.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	member, err := s.ownedMember(ctx, memberID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.Delete(ctx, member.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete member: %w", err)
	}
	return member, nil
}

// backupMember is the exported shape of a member; ownership and ids stay server side.
type backupMember struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *memberService) ExportMembers(ctx context.Context, ownerID string) ([]byte, error) {
	members, err := s.ListMembers(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	out := make([]backupMember, len(members))
	for i, m := range members {
		out[i] = backupMember{FirstName: m.FirstName, LastName: m.LastName, Email: m.Email, Phone: m.Phone, CreatedAt: m.CreatedAt}
	}
	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode members: %w", err)
	}
	return body, nil
}
