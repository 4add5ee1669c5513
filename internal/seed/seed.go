package seed

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"

	"buildsite/internal/auth"
	"buildsite/internal/logger"
	"buildsite/internal/models"
)

// passwordOut receives a generated initial password, once, outside the log stream.
var passwordOut io.Writer = os.Stderr

// FirstSetup makes sure at least one SUPER_ADMIN exists. It is a no-op once
// one does. An empty password is replaced by a random one printed to
// stderr. The seed email must not belong to an existing user.
func FirstSetup(ctx context.Context, db *gorm.DB, email, password string) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	generated := password == ""
	if generated {
		b := make([]byte, 18)
		if _, err := rand.Read(b); err != nil {
			return err
		}
		password = base64.RawURLEncoding.EncodeToString(b)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         "Super Admin",
		Role:         models.RoleSuperAdmin,
		Status:       models.UserActive,
		PasswordHash: hash,
	}
	var taken int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", admin.Email).Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("seed admin email %s already belongs to a non SUPER_ADMIN user", admin.Email)
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	logger.Info().Str("email", admin.Email).Uint64("id", admin.ID).Msg("seeded super admin")
	if generated {
		fmt.Fprintf(passwordOut, "initial SUPER_ADMIN password for %s: %s\n", admin.Email, password)
	}
	return nil
}
