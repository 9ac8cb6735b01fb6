package users

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/records"
	"github.com/dmitrijs2005/planboard/internal/timex"
)

// DefaultAccounts are created when users.json does not exist.
var DefaultAccounts = []struct {
	Username string
	Password string
	Role     auth.Role
}{
	{"admin", "admin123", auth.RoleSuperAdmin},
	{"user", "user123", auth.RoleUser},
	{"viewer", "view123", auth.RoleViewer},
}

// FileRepository keeps users in a JSON object keyed by username. Every
// write is preceded by a snapshot. The default accounts are written only
// when the file is absent; an unreadable file is common.ErrorCorruptFile
// and is left in place.
type FileRepository struct {
	store  *records.Store[models.User]
	hasher auth.Hasher
	now    func() time.Time
	logger logging.Logger
	snap   Snapshotter
}

type Option func(*FileRepository)

func WithClock(now func() time.Time) Option {
	return func(r *FileRepository) { r.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(r *FileRepository) { r.logger = l }
}

func WithSnapshots(s Snapshotter) Option {
	return func(r *FileRepository) { r.snap = s }
}

func NewFileRepository(path string, mu sync.Locker, hasher auth.Hasher, opts ...Option) *FileRepository {
	r := &FileRepository{
		hasher: hasher,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, o := range opts {
		o(r)
	}
	r.store = records.New(path, mu,
		records.WithLogger[models.User](r.logger),
		records.WithClock[models.User](r.now),
		records.WithSeed(r.defaults),
		records.WithBeforeWrite[models.User](r.snapshot),
	)
	return r
}

func (r *FileRepository) defaults() (map[string]models.User, error) {
	m := make(map[string]models.User, len(DefaultAccounts))
	for _, a := range DefaultAccounts {
		digest, err := r.hasher.Hash(a.Password)
		if err != nil {
			return nil, fmt.Errorf("hash default %s: %w", a.Username, err)
		}
		m[a.Username] = models.User{
			Password:  digest,
			Role:      a.Role,
			CreatedAt: timex.NewTimestamp(r.now()),
			CreatedBy: common.SystemPrincipal,
		}
	}
	return m, nil
}

func (r *FileRepository) snapshot(ctx context.Context) error {
	if r.snap == nil {
		return nil
	}
	if _, err := r.snap.Capture(ctx); err != nil {
		r.logger.Error(ctx, "snapshot before user write failed", "error", err)
	}
	return nil
}

func (r *FileRepository) Path() string {
	return r.store.Path()
}

func (r *FileRepository) All(ctx context.Context) (map[string]models.User, error) {
	return r.store.Load(ctx)
}

func (r *FileRepository) Get(ctx context.Context, username string) (models.User, error) {
	return r.store.Get(ctx, username)
}

// Create adds a user with a freshly hashed password. An existing username
// is common.ErrorConflict.
func (r *FileRepository) Create(ctx context.Context, username, password string, role auth.Role, createdBy string) (models.User, error) {
	digest, err := r.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		Password:  digest,
		Role:      role,
		CreatedAt: timex.NewTimestamp(r.now()),
		CreatedBy: createdBy,
	}
	err = r.store.Mutate(ctx, func(m map[string]models.User) (bool, error) {
		if _, ok := m[username]; ok {
			return false, common.ErrorConflict
		}
		m[username] = u
		return true, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *FileRepository) Delete(ctx context.Context, username string) error {
	found, err := r.store.Delete(ctx, username)
	if err != nil {
		return err
	}
	if !found {
		return common.ErrorNotFound
	}
	return nil
}

// Verify checks password against the stored credential. A legacy plaintext
// credential that matches is replaced by a digest in the same locked cycle
// and upgraded is true. Success stamps last_login. Unknown users and wrong
// passwords are both common.ErrorUnauthorized.
func (r *FileRepository) Verify(ctx context.Context, username, password string) (models.User, bool, error) {
	var (
		out      models.User
		upgraded bool
	)
	err := r.store.Mutate(ctx, func(m map[string]models.User) (bool, error) {
		u, ok := m[username]
		if !ok {
			return false, common.ErrorUnauthorized
		}
		ok, digest, err := r.check(u.Password, password)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, common.ErrorUnauthorized
		}
		if digest != "" {
			u.Password = digest
			upgraded = true
			r.logger.Info(ctx, "legacy credential upgraded", "username", username)
		}
		now := timex.NewTimestamp(r.now())
		u.LastLogin = &now
		m[username] = u
		out = u
		return true, nil
	})
	if err != nil {
		return models.User{}, false, err
	}
	return out, upgraded, nil
}

// check compares password with stored. For a matching legacy plaintext
// credential it also returns the digest that replaces it.
func (r *FileRepository) check(stored, password string) (ok bool, upgraded string, err error) {
	if auth.IsHashed(stored) {
		return r.hasher.Verify(stored, password), "", nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return false, "", nil
	}
	digest, err := r.hasher.Hash(password)
	if err != nil {
		return false, "", fmt.Errorf("hash password: %w", err)
	}
	return true, digest, nil
}

// ChangePassword replaces the credential after verifying current. A wrong
// current password is common.ErrorUnauthorized.
func (r *FileRepository) ChangePassword(ctx context.Context, username, current, next string) error {
	digest, err := r.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = r.store.Update(ctx, username, func(u models.User) (models.User, error) {
		ok, _, err := r.check(u.Password, current)
		if err != nil {
			return u, err
		}
		if !ok {
			return u, common.ErrorUnauthorized
		}
		now := timex.NewTimestamp(r.now())
		u.Password = digest
		u.PasswordChangedAt = &now
		return u, nil
	})
	return err
}

// Stats counts users by role.
func (r *FileRepository) Stats(ctx context.Context) (models.UserStats, error) {
	m, err := r.All(ctx)
	if err != nil {
		return models.UserStats{}, err
	}
	s := models.UserStats{Total: len(m)}
	for _, u := range m {
		switch u.Role {
		case auth.RoleSuperAdmin:
			s.SuperAdmins++
		case auth.RoleUser:
			s.Users++
		case auth.RoleViewer:
			s.Viewers++
		}
	}
	return s, nil
}

