package db

import (
	"context"
	defError "errors"
	"fmt"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/user"
	"innovation-portal/internal/workflow"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the YAML layout accepted by SEED_FILE and `admin seed`.
type SeedFile struct {
	Users      []SeedUser      `yaml:"users"`
	Challenges []SeedChallenge `yaml:"challenges"`
}

type SeedUser struct {
	Name     string   `yaml:"name"`
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

type SeedChallenge struct {
	Title         string    `yaml:"title"`
	Description   string    `yaml:"description"`
	ThematicAreas []string  `yaml:"thematic_areas"`
	Deadline      time.Time `yaml:"deadline"`
}

// DefaultSeed is used in development when no seed file is configured.
func DefaultSeed() *SeedFile {
	return &SeedFile{
		Users: []SeedUser{
			{Name: "Portal Admin", Email: "admin@example.com", Password: "password123", Roles: []string{"admin"}},
			{Name: "Deputy Director", Email: "dd@example.com", Password: "password123", Roles: []string{"deputy-director"}},
			{Name: "Subject Expert", Email: "sme@example.com", Password: "password123", Roles: []string{"sme"}},
			{Name: "Board Member", Email: "board@example.com", Password: "password123", Roles: []string{"board"}},
			{Name: "Test User", Email: "test@example.com", Password: "password123"},
		},
	}
}

// ParseSeed decodes and checks a seed document.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !defError.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}

	for i, u := range seed.Users {
		if strings.TrimSpace(u.Email) == "" || len(u.Password) < 6 {
			return nil, fmt.Errorf("seed user %d: email and a password of at least 6 characters are required", i)
		}
		for _, r := range u.Roles {
			if !workflow.Role(r).Valid() {
				return nil, fmt.Errorf("seed user %s: unknown role %q", u.Email, r)
			}
		}
	}
	for i, c := range seed.Challenges {
		if strings.TrimSpace(c.Title) == "" || c.Deadline.IsZero() {
			return nil, fmt.Errorf("seed challenge %d: title and deadline are required", i)
		}
	}
	return &seed, nil
}

func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSeed(f)
}

// SeedData creates the seeded users and challenges that do not exist yet.
// Existing users only gain missing roles.
func SeedData(ctx context.Context, db *gorm.DB, seed *SeedFile) error {
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)

	for _, su := range seed.Users {
		existing, err := userRepo.FindByEmail(ctx, su.Email)
		if err != nil && !defError.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing == nil {
			u := &domain.User{Name: su.Name, Email: su.Email, Password: su.Password, IsActive: true}
			if err := userService.Register(ctx, u); err != nil {
				return fmt.Errorf("seeding %s: %w", su.Email, err)
			}
			existing = u
			log.Info().Str("email", su.Email).Msg("created seed user")
		}

		held := make(map[string]bool, len(existing.Roles))
		for _, r := range existing.Roles {
			held[r.Name] = true
		}
		for _, r := range su.Roles {
			if held[r] {
				continue
			}
			if _, err := userService.AssignRole(ctx, existing.ID, r); err != nil {
				return fmt.Errorf("seeding role %s for %s: %w", r, su.Email, err)
			}
		}
	}

	var creatorID uint64
	if len(seed.Challenges) > 0 {
		var admin domain.User
		err := db.WithContext(ctx).
			Joins("JOIN user_roles ON user_roles.user_id = users.id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("roles.name = ?", string(workflow.RoleAdmin)).
			First(&admin).Error
		if err != nil {
			return fmt.Errorf("seeding challenges needs an admin user: %w", err)
		}
		creatorID = admin.ID
	}

	for _, sc := range seed.Challenges {
		ch := domain.Challenge{
			Title:         sc.Title,
			Description:   sc.Description,
			ThematicAreas: pq.StringArray(sc.ThematicAreas),
			Deadline:      sc.Deadline,
			IsOpen:        true,
			CreatedByID:   creatorID,
		}
		res := db.WithContext(ctx).Where(domain.Challenge{Title: sc.Title}).FirstOrCreate(&ch)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Info().Str("title", sc.Title).Msg("created seed challenge")
		}
	}
	return nil
}
