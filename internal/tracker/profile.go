package tracker

import (
	"context"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/projector"
	"github.com/roach88/renalcare/internal/schema"
)

// ProfilePatch lists profile fields to change. Nil fields are left as they
// are. Email and ID are fixed for the life of the account.
type ProfilePatch struct {
	Name                *string
	Password            *string
	DiagnosedDate       *string
	Age                 *int
	Gender              *domain.Gender
	CKDStage            *domain.CKDStage
	TargetBloodPressure *string
	BaselineWeight      *float64
}

func (p ProfilePatch) applyTo(u *domain.User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.DiagnosedDate != nil {
		u.DiagnosedDate = *p.DiagnosedDate
	}
	if p.Age != nil {
		age := *p.Age
		u.Age = &age
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.CKDStage != nil {
		u.CKDStage = *p.CKDStage
	}
	if p.TargetBloodPressure != nil {
		u.TargetBloodPressure = *p.TargetBloodPressure
	}
	if p.BaselineWeight != nil {
		w := *p.BaselineWeight
		u.BaselineWeight = &w
	}
}

// UpdateProfile applies patch to the active user and returns the result.
func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch) (*domain.User, error) {
	var updated *domain.User
	err := s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		user := st.User.Clone()
		patch.applyTo(user)
		if err := s.validator.Validate(schema.KindUser, user); err != nil {
			return projector.Update{}, err
		}
		updated = user.Clone()
		return projector.Update{User: user}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
