package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"handscore/internal/config"
	"handscore/internal/model"
	pkgAuth "handscore/pkg/auth"
	appErr "handscore/pkg/errors"
	"handscore/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db     *gorm.DB
	signer *pkgAuth.Signer
	seed   config.AdminSeedConfig
}

type LoginResult struct {
	Token    string    `json:"token"`
	ExpireAt time.Time `json:"expireAt"`
	Admin    AdminInfo `json:"admin"`
}

type AdminInfo struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func NewService(db *gorm.DB, signer *pkgAuth.Signer, seed config.AdminSeedConfig) *Service {
	return &Service{db: db, signer: signer, seed: seed}
}

func (s *Service) Signer() *pkgAuth.Signer {
	return s.signer
}

// Login checks the credentials of an active admin and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	admin, err := s.authenticate(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, err
	}

	token, expireAt, err := s.signer.IssueAdmin(admin.ID)
	if err != nil {
		return nil, err
	}
	if err := s.touchLogin(ctx, admin); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpireAt: expireAt, Admin: infoOf(admin)}, nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (*model.Admin, error) {
	if username == "" || password == "" {
		return nil, appErr.ErrInvalidAdminPassword
	}

	admin := new(model.Admin)
	err := s.db.WithContext(ctx).Where("username = ?", username).First(admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, appErr.ErrAdminNotFound
	case err != nil:
		return nil, err
	case !strings.EqualFold(admin.Status, "active"):
		return nil, appErr.ErrAdminDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, appErr.ErrInvalidAdminPassword
	}
	return admin, nil
}

func (s *Service) touchLogin(ctx context.Context, admin *model.Admin) error {
	now := time.Now()
	if err := s.db.WithContext(ctx).Model(admin).Update("last_login_at", now).Error; err != nil {
		return err
	}
	admin.LastLoginAt = &now
	return nil
}

func infoOf(admin *model.Admin) AdminInfo {
	return AdminInfo{
		ID:          admin.ID,
		Username:    admin.Username,
		DisplayName: admin.DisplayName,
		LastLoginAt: admin.LastLoginAt,
	}
}

// EnsureDefaultAdmin creates the configured bootstrap account once.
func (s *Service) EnsureDefaultAdmin(ctx context.Context) error {
	name, password := s.seed.DefaultUsername, s.seed.DefaultPassword
	if name == "" || password == "" {
		logger.Log.Warn("admin seed not configured, no bootstrap account")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.Admin{
		Username:     name,
		PasswordHash: string(hash),
		DisplayName:  name,
		Status:       "active",
	}
	// the unique username turns a second bootstrap into a no-op
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&admin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.Log.Info("bootstrap admin created", zap.String("username", name), zap.Int64("id", admin.ID))
	}
	return nil
}
