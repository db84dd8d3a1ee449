package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/repository"
	"github.com/chenterphai/storefront-api/internal/utils"
)

// DateOfBirthLayout is the accepted input and output form of a birth date.
const DateOfBirthLayout = "2006-01-02"

// UpdateUserInput is a partial profile update.  Nil fields are left as is.
type UpdateUserInput struct {
	Username    *string
	Email       *string
	Nickname    *string
	Avatar      *string
	Role        *model.Role
	Gender      *model.Gender
	DateOfBirth *string
}

// AccountService serves profile reads and updates.
type AccountService struct {
	users UserStore
}

func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users}
}

// GetUser returns the user with the given id.
func (s *AccountService) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, Internal("Error while fetching user.", err)
	}
	return u, nil
}

// ListUsers returns every account.  Callers restrict it to admins.
func (s *AccountService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, Internal("Error while fetching users.", err)
	}
	return users, nil
}

// UpdateUser applies in to the actor's own profile.  Uniqueness is checked
// only for values that actually change.  Changing the role requires the
// actor to already be an admin.
func (s *AccountService) UpdateUser(ctx context.Context, actorID uint64, in UpdateUserInput) (*model.User, error) {
	u, err := s.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" || len(name) > maxUsernameLength {
			return nil, InvalidInput("username", "Username must be 1 to 20 characters.")
		}
		if name != u.Username {
			if err := checkUnique(ctx, "username", name, s.users.GetByUsername); err != nil {
				return nil, err
			}
			u.Username = name
		}
	}
	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		if !utils.IsValidEmail(email) {
			return nil, InvalidInput("email", "Invalid email format.")
		}
		if email != u.Email {
			if err := checkUnique(ctx, "email", email, s.users.GetByEmail); err != nil {
				return nil, err
			}
			u.Email = email
		}
	}
	if in.Role != nil && *in.Role != u.Role {
		if !in.Role.Valid() {
			return nil, InvalidInput("role", "Role is invalid!")
		}
		if u.Role != model.RoleAdmin {
			log.Warn().Uint64("user_id", actorID).Str("role", string(*in.Role)).Msg("role change rejected")
			return nil, Forbidden("Forbidden: only admins may change roles.")
		}
		u.Role = *in.Role
	}
	if in.Gender != nil {
		if !in.Gender.Valid() {
			return nil, InvalidInput("gender", "Gender is invalid!")
		}
		u.Gender = *in.Gender
	}
	if in.Nickname != nil {
		u.Nickname = strings.TrimSpace(*in.Nickname)
	}
	if in.Avatar != nil {
		u.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.DateOfBirth != nil {
		if *in.DateOfBirth == "" {
			u.DateOfBirth = nil
		} else {
			dob, err := time.Parse(DateOfBirthLayout, *in.DateOfBirth)
			if err != nil {
				return nil, InvalidInput("dateOfBirth", "Date of birth must be YYYY-MM-DD.")
			}
			u.DateOfBirth = &dob
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("", "Username or Email already in use.")
		}
		return nil, Internal("Error while updating user.", err)
	}
	log.Info().Uint64("user_id", u.ID).Msg("user updated")
	return u, nil
}
