// Package seed provides helpers to create demo data for the feed database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"

	"socialfeed/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user can log in with.
const DefaultPassword = "Password123!"

// Factory builds users and post content with gofakeit.
type Factory struct {
	db     *gorm.DB
	faker  *gofakeit.Faker
	hashed string
}

// NewFactory creates a Factory bound to db. A zero randSeed picks a random one.
func NewFactory(db *gorm.DB, randSeed int64, skipBcrypt bool) (*Factory, error) {
	f := &Factory{db: db, faker: gofakeit.New(randSeed), hashed: DefaultPassword}
	if !skipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		f.hashed = string(hashed)
	}
	return f, nil
}

// CreateUser persists a sample user. Optional overrides run before saving.
func (f *Factory) CreateUser(seq int, overrides ...func(*models.User)) (*models.User, error) {
	base := strings.ToLower(f.faker.FirstName())
	if len(base) > 20 {
		base = base[:20]
	}
	username := fmt.Sprintf("%s_%d", base, seq)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: f.hashed,
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// PostContent returns a short paragraph of post text.
func (f *Factory) PostContent() string {
	return f.faker.Paragraph(1, f.faker.Number(1, 4), 10, " ")
}

// CommentContent returns a single sentence.
func (f *Factory) CommentContent() string {
	return f.faker.Sentence(f.faker.Number(3, 14))
}

// PostImages returns zero or one picsum image reference.
func (f *Factory) PostImages(ratio float64) []models.PostImage {
	if f.faker.Float64Range(0, 1) >= ratio {
		return nil
	}
	return []models.PostImage{{
		Src: fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID()),
		Alt: f.faker.HipsterWord(),
	}}
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.faker.Float64Range(0, 1) < p
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return f.faker.Number(0, n-1)
}
