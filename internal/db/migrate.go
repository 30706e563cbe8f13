package db

import (
	"innovation-portal/internal/domain"
	"innovation-portal/internal/workflow"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Models lists every table the portal owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.Role{},
		&domain.User{},
		&domain.Idea{},
		&domain.TeamMember{},
		&domain.Comment{},
		&domain.IdeaLike{},
		&domain.IdeaVersion{},
		&domain.Challenge{},
		&domain.ChallengeSubmission{},
		&domain.CollaborationMember{},
		&domain.IdeaReview{},
		&domain.IdeaReviewDecision{},
		&domain.ChallengeReview{},
		&domain.ChallengeReviewDecision{},
		&domain.CollaborationRequest{},
		&domain.CollaborationProposal{},
		&domain.Notification{},
	}
}

// partialIndexes holds constraints gorm tags cannot express.
var partialIndexes = []string{
	// one open (pending or approved) request per requester and idea
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_collaboration_requests_open
		ON collaboration_requests (idea_id, requester_id)
		WHERE status IN ('` + domain.CollaborationPending + `', '` + domain.CollaborationApproved + `')`,
}

// Migrate runs database migrations and makes sure every known role exists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	for _, r := range workflow.Roles {
		if err := db.Where(domain.Role{Name: string(r)}).FirstOrCreate(&domain.Role{Name: string(r)}).Error; err != nil {
			return err
		}
	}

	log.Info().Int("tables", len(Models())).Msg("database schema migrated successfully")
	return nil
}
