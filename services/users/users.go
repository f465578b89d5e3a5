// Package users keeps the local user mirror in step with the identity provider.
package users

import (
	"context"
	"errors"
	"fmt"
	"log"

	"brainix/models"
	"brainix/services/email"
	"brainix/services/identity"

	"gorm.io/gorm"
)

var ErrNoEmail = errors.New("identity user has no email address")

type Service struct {
	DB       *gorm.DB
	Identity identity.Provider
	Mailer   email.Sender
}

// EnsureProfiles creates the profile rows a role needs; existing rows are left alone
func EnsureProfiles(tx *gorm.DB, userID uint, role string) error {
	if err := tx.Where(models.StudentProfile{UserID: userID}).FirstOrCreate(&models.StudentProfile{}).Error; err != nil {
		return err
	}
	if role == models.RoleInstructor || role == models.RoleAdmin {
		return tx.Where(models.InstructorProfile{UserID: userID}).FirstOrCreate(&models.InstructorProfile{}).Error
	}
	return nil
}

// Sync upserts the local user from an identity provider payload and reports whether it was created
func (s *Service) Sync(data *identity.UserData) (*models.User, bool, error) {
	address := data.PrimaryEmail()
	if address == "" {
		return nil, false, ErrNoEmail
	}
	role := data.Role()
	if !models.ValidRole(role) {
		role = models.RoleStudent
	}

	user := &models.User{}
	created := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("clerk_id = ?", data.ID).First(user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// an account recreated with the same address takes over the old row
			err = tx.Where("email = ?", address).First(user).Error
		}
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			*user = models.User{
				ClerkID:   data.ID,
				Email:     address,
				FirstName: data.FirstName,
				LastName:  data.LastName,
				ImageURL:  data.ImageURL,
				Role:      role,
			}
			created = true
			if err := tx.Create(user).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(user).Updates(map[string]interface{}{
				"clerk_id":   data.ID,
				"email":      address,
				"first_name": data.FirstName,
				"last_name":  data.LastName,
				"image_url":  data.ImageURL,
				"role":       role,
				"is_deleted": false,
			}).Error; err != nil {
				return err
			}
		}
		return EnsureProfiles(tx, user.ID, role)
	})
	if err != nil {
		return nil, false, err
	}

	if err := s.DB.First(user, user.ID).Error; err != nil {
		return nil, false, err
	}
	if created {
		s.Mailer.Send(email.Welcome(user.FullName(), user.Email))
	}
	return user, created, nil
}

// Delete soft deletes the user mirrored from clerkID; it reports false when none exists
func (s *Service) Delete(clerkID string) (bool, error) {
	res := s.DB.Model(&models.User{}).Where("clerk_id = ? AND is_deleted = ?", clerkID, false).Update("is_deleted", true)
	return res.RowsAffected > 0, res.Error
}

// ChangeRole pushes role to the identity provider, then updates the local row.
// Nothing changes locally when the provider call fails.
func (s *Service) ChangeRole(ctx context.Context, user models.User, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if user.Role == role {
		return &user, nil
	}

	if err := s.Identity.UpdatePublicMetadata(ctx, user.ClerkID, map[string]interface{}{"role": role}); err != nil {
		return nil, fmt.Errorf("update identity metadata: %w", err)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("role", role).Error; err != nil {
			return err
		}
		return EnsureProfiles(tx, user.ID, role)
	})
	if err != nil {
		log.Printf("[USERS] role of %s is %s at the provider but the local update failed: %v", user.ClerkID, role, err)
		return nil, err
	}

	updated := &models.User{}
	if err := s.DB.Preload("StudentProfile").Preload("InstructorProfile").First(updated, user.ID).Error; err != nil {
		return nil, err
	}
	s.Mailer.Send(email.RoleChanged(updated.FullName(), updated.Email, role))
	return updated, nil
}
