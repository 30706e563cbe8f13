package workflow

type Role string

const (
	RoleAdmin            Role = "admin"
	RoleDeputyDirector   Role = "deputy-director"
	RoleSME              Role = "sme"
	RoleBoard            Role = "board"
	RoleChallengeManager Role = "challenge-manager"
	RoleSubmitter        Role = "submitter"
)

// Roles lists the roles known to the portal.
var Roles = []Role{RoleAdmin, RoleDeputyDirector, RoleSME, RoleBoard, RoleChallengeManager, RoleSubmitter}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type Permission string

const (
	PermCreateIdea      Permission = "idea.create"
	PermReviewStage1    Permission = "review.stage1"
	PermReviewStage2    Permission = "review.stage2"
	PermRecordDecision  Permission = "decision.record"
	PermManageChallenge Permission = "challenge.manage"
	PermViewAll         Permission = "submission.view_all"
	PermAssignRole      Permission = "role.assign"
)

// admin is not listed; it holds every permission.
var rolePermissions = map[Role][]Permission{
	RoleDeputyDirector:   {PermRecordDecision, PermViewAll, PermCreateIdea},
	RoleSME:              {PermReviewStage1, PermViewAll, PermCreateIdea},
	RoleBoard:            {PermReviewStage2, PermViewAll, PermCreateIdea},
	RoleChallengeManager: {PermManageChallenge, PermViewAll, PermCreateIdea},
	RoleSubmitter:        {PermCreateIdea},
}

// ReviewPermission returns the permission a reviewer needs for a stage.
func ReviewPermission(s Stage) Permission {
	if s == Stage2 {
		return PermReviewStage2
	}
	return PermReviewStage1
}

// ReviewerRole returns the role that reviews a stage.
func ReviewerRole(s Stage) Role {
	if s == Stage2 {
		return RoleBoard
	}
	return RoleSME
}

// Actor is the authenticated user as seen by the gate checks.
type Actor struct {
	ID    uint64
	Roles []Role
}

// NewActor builds an actor from role names as stored in the database.
// Unknown names are ignored.
func NewActor(id uint64, roleNames []string) Actor {
	roles := make([]Role, 0, len(roleNames))
	for _, name := range roleNames {
		if r := Role(name); r.Valid() {
			roles = append(roles, r)
		}
	}
	return Actor{ID: id, Roles: roles}
}

func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) Can(p Permission) bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
		for _, granted := range rolePermissions[r] {
			if granted == p {
				return true
			}
		}
	}
	return false
}

// CanReview checks that the actor may file a review for the subject's
// current stage.
func CanReview(a Actor, s Subject) error {
	if !s.Status.InReview() {
		return ErrNotInReview
	}
	if a.ID == s.AuthorID {
		return ErrSelfReview
	}
	if !a.Can(ReviewPermission(s.Stage())) {
		return ErrForbidden
	}
	return nil
}

// CanDecide checks that the actor may record the compiled decision for the
// subject's current stage given how many reviews were filed in this round.
func CanDecide(a Actor, s Subject, reviewCount int64, minReviews int) error {
	if !a.Can(PermRecordDecision) {
		return ErrForbidden
	}
	if !s.Status.InReview() {
		return ErrNotInReview
	}
	if a.ID == s.AuthorID {
		return ErrSelfReview
	}
	if reviewCount < int64(minReviews) {
		return ErrNotEnoughReviews
	}
	return nil
}

// CanEdit checks that the actor may change the subject's content.
func CanEdit(a Actor, s Subject) error {
	if a.ID != s.AuthorID && !a.HasRole(RoleAdmin) {
		return ErrNotAuthor
	}
	if !s.Status.Editable() {
		return ErrNotEditable
	}
	return nil
}

// CanSubmit checks authorship and returns the status the subject moves to.
func CanSubmit(a Actor, s Subject) (Status, error) {
	if a.ID != s.AuthorID {
		return s.Status, ErrNotAuthor
	}
	return Submit(s.Status)
}

// CanView reports whether the actor may read the subject. Approved
// submissions are public.
func CanView(a Actor, s Subject, collaborator bool) bool {
	return a.ID == s.AuthorID ||
		collaborator ||
		s.Status == StatusApproved ||
		a.Can(PermViewAll)
}
