package services

import (
	"context"
	"errors"
	"sort"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/users"
	"github.com/dmitrijs2005/planboard/internal/timex"
)

// UserInfo is a user record without its credential.
type UserInfo struct {
	Username  string           `json:"username"`
	Role      auth.Role        `json:"role"`
	CreatedAt timex.Timestamp  `json:"created_at"`
	LastLogin *timex.Timestamp `json:"last_login"`
	CreatedBy string           `json:"created_by,omitempty"`
}

type UserService struct {
	repo     users.Repository
	security *logging.SecurityLog
}

func NewUserService(repo users.Repository, security *logging.SecurityLog) *UserService {
	return &UserService{repo: repo, security: security}
}

// ListAll returns every user sorted by name.
func (s *UserService) ListAll(ctx context.Context) ([]UserInfo, error) {
	if _, err := auth.Authorize(ctx, auth.OpUsersManage); err != nil {
		return nil, err
	}
	m, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserInfo, 0, len(m))
	for name, u := range m {
		out = append(out, UserInfo{
			Username:  name,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLogin,
			CreatedBy: u.CreatedBy,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *UserService) Stats(ctx context.Context) (models.UserStats, error) {
	if _, err := auth.Authorize(ctx, auth.OpUsersManage); err != nil {
		return models.UserStats{}, err
	}
	return s.repo.Stats(ctx)
}

// Create validates and adds an account owned by the acting principal.
func (s *UserService) Create(ctx context.Context, username, password string, role auth.Role) error {
	p, err := auth.Authorize(ctx, auth.OpUsersManage)
	if err != nil {
		return err
	}
	if err := s.validateNew(username, password, role); err != nil {
		s.security.Event(ctx, logging.EventUserAddFailed, p.Username, "target="+username+" reason="+err.Error())
		return err
	}
	if _, err := s.repo.Create(ctx, username, password, role, p.Username); err != nil {
		s.security.Event(ctx, logging.EventUserAddFailed, p.Username, "target="+username+" reason="+err.Error())
		return err
	}
	s.security.Event(ctx, logging.EventUserAdded, p.Username, "target="+username+" role="+role.String())
	return nil
}

func (s *UserService) validateNew(username, password string, role auth.Role) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if role == auth.RoleNone {
		return common.NewValidationError("role", "unknown_role", "role is required")
	}
	return nil
}

// Delete removes an account. Principals cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, username string) error {
	p, err := auth.Authorize(ctx, auth.OpUsersManage)
	if err != nil {
		return err
	}
	if username == p.Username {
		err := common.NewValidationError("username", "self_delete", "you cannot delete your own account")
		s.security.Event(ctx, logging.EventUserDeleteFailed, p.Username, "target="+username+" reason=self_delete")
		return err
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		s.security.Event(ctx, logging.EventUserDeleteFailed, p.Username, "target="+username+" reason="+err.Error())
		return err
	}
	s.security.Event(ctx, logging.EventUserDeleted, p.Username, "target="+username)
	return nil
}

// VerifyCredentials authenticates username and returns the principal to
// carry in later contexts. Failures are common.ErrorUnauthorized.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (auth.Principal, error) {
	u, upgraded, err := s.repo.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.security.Event(ctx, logging.EventLoginFailed, username, "invalid credentials")
		}
		return auth.Principal{}, err
	}
	if upgraded {
		s.security.Event(ctx, logging.EventPasswordUpgraded, username, "legacy credential rehashed")
	}
	s.security.Event(ctx, logging.EventLoginSucceeded, username, "role="+u.Role.String())
	return auth.Principal{Username: username, Role: u.Role}, nil
}

// ChangePassword replaces the acting principal's password.
func (s *UserService) ChangePassword(ctx context.Context, current, next, confirm string) error {
	p, err := auth.Authorize(ctx, auth.OpProfilePassword)
	if err != nil {
		return err
	}
	fail := func(err error) error {
		s.security.Event(ctx, logging.EventPasswordChangeFailed, p.Username, err.Error())
		return err
	}
	if next == current {
		return fail(common.NewValidationError("new_password", "must_differ", "new password must differ from the current one"))
	}
	if next != confirm {
		return fail(common.NewValidationError("confirm_password", "mismatch", "passwords do not match"))
	}
	if err := ValidatePassword(next); err != nil {
		return fail(err)
	}
	if err := s.repo.ChangePassword(ctx, p.Username, current, next); err != nil {
		return fail(err)
	}
	s.security.Event(ctx, logging.EventPasswordChanged, p.Username, "")
	return nil
}
