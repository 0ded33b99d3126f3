package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ecomkit/storefront/internal/auth"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const demoProductCount = 20

var demoImages = []string{
	"https://ckfob8zphd0vlpan.public.blob.vercel-storage.com/1-To-10-Numbers-Transparent-PNG.webp",
	"https://ckfob8zphd0vlpan.public.blob.vercel-storage.com/letters-p-q-r-s-t.webp",
}

// checkSuper makes sure the configured administrator exists, has the ADMIN
// role and can sign in.
func (a *Application) checkSuper() {
	email := strings.ToLower(strings.TrimSpace(a.appConfig.Auth.AdminEmail))
	password := a.appConfig.Auth.AdminPassword
	if email == "" {
		zap.L().Info("no admin account configured, skipping admin seed")
		return
	}
	if password != "" {
		if err := auth.ValidatePassword(password); err != nil {
			zap.L().Error("admin password rejected, skipping admin seed",
				zap.String("email", email), zap.Error(err))
			return
		}
	}
	ctx := context.Background()

	user, err := a.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if password == "" {
			zap.L().Warn("admin account missing and no admin password configured", zap.String("email", email))
			return
		}
		hashed, err := a.hasher.Hash(password)
		if err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		if err := a.users.Create(ctx, &domain.User{
			ID:          common.UUID(),
			FirstName:   "Administrator",
			Email:       email,
			Password:    &hashed,
			Type:        domain.RoleAdmin,
			AcceptTerms: true,
		}); err != nil {
			zap.L().Error("failed to create admin account", zap.Error(err))
		} else {
			zap.L().Info("initialized admin account", zap.String("email", email))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetRole := !user.Type.IsAdmin()
	resetPassword := !user.HasPassword() && password != ""

	if !resetRole && !resetPassword {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetRole {
		updates["type"] = domain.RoleAdmin
	}
	if resetPassword {
		hashed, err := a.hasher.Hash(password)
		if err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		updates["password"] = hashed
	}

	if err := a.users.Updates(ctx, user.ID, updates); err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired admin account",
		zap.String("email", email),
		zap.Bool("roleReset", resetRole),
		zap.Bool("passwordReset", resetPassword))
}

// checkProducts fills an empty catalog with demo products.
func (a *Application) checkProducts() {
	ctx := context.Background()
	count, err := a.products.CountLive(ctx)
	if err != nil {
		zap.L().Error("failed to count products", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // demo data only
	for i := 1; i <= demoProductCount; i++ {
		price := float64(rnd.Intn(100000)) / 100
		original := price + 20
		desc := fmt.Sprintf("This is product %d", i)
		p := &domain.Product{
			Name:          fmt.Sprintf("Product %d", i),
			Description:   &desc,
			Price:         &price,
			OriginalPrice: &original,
			Images:        domain.StringList(demoImages),
			Tags:          domain.StringList{"sample", "demo"},
			Stock:         rnd.Intn(100),
			Active:        true,
		}
		if err := a.products.Create(ctx, p); err != nil {
			zap.L().Error("failed to create demo product", zap.String("name", p.Name), zap.Error(err))
			return
		}
	}
	zap.L().Info("initialized demo products", zap.Int("count", demoProductCount))
}

// SeedDemoProducts runs the demo product seed on demand.
func (a *Application) SeedDemoProducts() {
	a.checkProducts()
}
