// Package accounts orchestrates the identity lifecycle around Google
// sign-in: linking or creating users, profile setup, username validation,
// suggestion, and rename.
package accounts

import (
	"errors"

	"github.com/freespaces/server/internal/identifier"
	"github.com/freespaces/server/internal/models"
	"github.com/freespaces/server/internal/usernames"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = errors.New("username is already taken")
	ErrUserNotFound  = errors.New("user not found")
)

// GoogleProfile carries the subject id and profile attributes returned by
// the Google userinfo endpoint.
type GoogleProfile struct {
	Sub        string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

type Service struct {
	db     *gorm.DB
	policy *usernames.Policy
}

func NewService(db *gorm.DB, policy *usernames.Policy) *Service {
	return &Service{db: db, policy: policy}
}

// LinkOrCreate attaches the Google credential to the user owning its email,
// or creates the user and its profile together in one transaction.
// Idempotent per authentication event: the subject id match wins over the
// email match, so repeat sign-ins always land on the same row.
func (s *Service) LinkOrCreate(p GoogleProfile) (*models.User, error) {
	var user models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Repeat sign-in with a known credential.
		err := tx.Preload("Profile").Where("google_id = ?", p.Sub).First(&user).Error
		if err == nil {
			return refreshGoogleData(tx, &user, p)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// Email already registered: link the credential instead of creating
		// a duplicate identity.
		err = tx.Preload("Profile").Where("email = ?", p.Email).First(&user).Error
		if err == nil {
			if err := tx.Model(&user).Update("google_id", p.Sub).Error; err != nil {
				return err
			}
			user.GoogleID = &p.Sub
			return refreshGoogleData(tx, &user, p)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// First sign-in: user starts without a username and with an
		// incomplete profile, which sends every entry point to setup.
		user = models.User{
			Email:     p.Email,
			GoogleID:  &p.Sub,
			FirstName: p.GivenName,
			LastName:  p.FamilyName,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{UserID: user.ID, PictureURL: p.Picture}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// refreshGoogleData keeps the stored Google picture current and creates the
// profile lazily if an older row is missing one.
func refreshGoogleData(tx *gorm.DB, user *models.User, p GoogleProfile) error {
	if user.Profile == nil {
		profile := models.Profile{UserID: user.ID, PictureURL: p.Picture}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile
		return nil
	}
	if p.Picture != "" && user.Profile.PictureURL != p.Picture {
		user.Profile.PictureURL = p.Picture
		return tx.Model(user.Profile).Update("picture_url", p.Picture).Error
	}
	return nil
}

// usernameTaken is an exact-match probe against the live store. Handles
// differing only by case are distinct, matching the unique index; the
// denylist in the policy is the only case-insensitive rule.
func (s *Service) usernameTaken(username string, exclude uuid.UUID) (bool, error) {
	q := s.db.Model(&models.User{}).Where("username = ?", username)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// existsFor adapts the taken probe to the resolver callback, excluding the
// user being edited when renaming.
func (s *Service) existsFor(exclude uuid.UUID) identifier.ExistsFunc {
	return func(candidate string) (bool, error) {
		return s.usernameTaken(candidate, exclude)
	}
}

// ValidateUsername cleans and checks raw against the policy and the live
// store. exclude skips the caller's own row so re-submitting the current
// handle validates. Cheap enough for the live-validation endpoint: one
// regex pass and one indexed lookup.
func (s *Service) ValidateUsername(raw string, exclude uuid.UUID) (string, error) {
	clean, err := s.policy.Validate(raw)
	if err != nil {
		return "", err
	}
	taken, err := s.usernameTaken(clean, exclude)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrUsernameTaken
	}
	return clean, nil
}

// Suggest generates a free username from the given name and email without
// persisting anything.
func (s *Service) Suggest(givenName, email string) (string, error) {
	return s.policy.Generate(givenName, email, s.existsFor(uuid.Nil))
}

// AssignUsername validates raw and persists it for the user. Used both for
// the one-time assignment during setup and for later renames; the old
// handle is released by the same UPDATE that claims the new one. A
// duplicate-key failure means another request won the race after our probe,
// so it comes back as ErrUsernameTaken rather than a storage error.
func (s *Service) AssignUsername(userID uuid.UUID, raw string) (string, error) {
	clean, err := s.ValidateUsername(raw, userID)
	if err != nil {
		return "", err
	}

	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("username", clean)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return "", ErrUsernameTaken
		}
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrUserNotFound
	}
	return clean, nil
}

// SetupInput carries the fields collected by the profile setup form. The
// avatar, when present, must already exist in media storage; the handler
// verifies that before calling in.
type SetupInput struct {
	Username  string
	Bio       string
	AvatarKey string
}

// CompleteSetup assigns the username, applies the profile fields, and marks
// setup complete in a single transaction, so a failure on any side leaves
// the account in its pending state instead of half-committed.
func (s *Service) CompleteSetup(userID uuid.UUID, in SetupInput) (*models.User, error) {
	clean, err := s.ValidateUsername(in.Username, userID)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Profile").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&user).Update("username", clean).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return err
		}
		user.Username = &clean

		if user.Profile == nil {
			user.Profile = &models.Profile{UserID: user.ID}
			if err := tx.Create(user.Profile).Error; err != nil {
				return err
			}
		}

		updates := map[string]any{"setup_complete": true}
		if in.Bio != "" {
			updates["bio"] = in.Bio
		}
		if in.AvatarKey != "" {
			updates["avatar_key"] = in.AvatarKey
		}
		if err := tx.Model(user.Profile).Updates(updates).Error; err != nil {
			return err
		}
		user.Profile.SetupComplete = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileInput carries the editable public profile fields.
type ProfileInput struct {
	Bio          string
	Website      string
	Location     string
	FacebookURL  string
	InstagramURL string
	TiktokURL    string
}

func (s *Service) UpdateProfile(userID uuid.UUID, in ProfileInput) error {
	res := s.db.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(map[string]any{
		"bio":           in.Bio,
		"website":       in.Website,
		"location":      in.Location,
		"facebook_url":  in.FacebookURL,
		"instagram_url": in.InstagramURL,
		"tiktok_url":    in.TiktokURL,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete permanently removes the account and everything it owns: the
// profile, the user's posts, and the likes and comments on either side of
// those posts. Deletes are issued explicitly inside one transaction rather
// than leaning on database cascades, so the rows disappear the same way on
// backends that don't enforce foreign keys.
func (s *Service) Delete(userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var postIDs []uuid.UUID
		if err := tx.Model(&models.Post{}).Where("author_id = ?", userID).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// GetByID loads a user with its profile.
func (s *Service) GetByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Profile").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername loads a public profile by exact handle.
func (s *Service) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Stats returns the published post count and the total likes received on
// published posts, fetched concurrently.
func (s *Service) Stats(userID uuid.UUID) (posts int64, likes int64, err error) {
	var g errgroup.Group
	g.Go(func() error {
		return s.db.Model(&models.Post{}).
			Where("author_id = ? AND status = ?", userID, models.StatusPublished).
			Count(&posts).Error
	})
	g.Go(func() error {
		return s.db.Model(&models.Like{}).
			Joins("JOIN posts ON posts.id = likes.post_id").
			Where("posts.author_id = ? AND posts.status = ?", userID, models.StatusPublished).
			Count(&likes).Error
	})
	err = g.Wait()
	return posts, likes, err
}
