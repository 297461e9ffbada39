package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/repo"
)

// MembershipAuthority answers "what may this user do in this project".
type MembershipAuthority struct {
	projects *repo.ProjectRepo
	members  *repo.MembershipRepo
}

func NewMembershipAuthority(projects *repo.ProjectRepo, members *repo.MembershipRepo) *MembershipAuthority {
	return &MembershipAuthority{projects: projects, members: members}
}

// WithTx binds every lookup to tx so checks and writes share one transaction.
func (a *MembershipAuthority) WithTx(tx *gorm.DB) *MembershipAuthority {
	return &MembershipAuthority{projects: a.projects.WithTx(tx), members: a.members.WithTx(tx)}
}

// RoleOf reports the caller's role in the project; ok is false for non-members.
func (a *MembershipAuthority) RoleOf(ctx context.Context, userID, projectID uint) (role domain.Role, ok bool, err error) {
	m, err := a.members.Find(ctx, projectID, userID)
	if err != nil {
		return "", false, domain.Storage("failed to check project membership", err)
	}
	if m == nil {
		return "", false, nil
	}
	return m.Role, true, nil
}

func (a *MembershipAuthority) RequireMember(ctx context.Context, userID, projectID uint) (domain.Role, error) {
	role, ok, err := a.RoleOf(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.Forbidden("access denied, you are not a member of this project")
	}
	return role, nil
}

// RequireAdminOrOwner passes admins and the project owner, even if the
// owner's membership row is missing or was demoted.
func (a *MembershipAuthority) RequireAdminOrOwner(ctx context.Context, userID, projectID uint) error {
	role, _, err := a.RoleOf(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if role == domain.RoleAdmin {
		return nil
	}
	owner, err := a.isOwner(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if !owner {
		return domain.Forbidden("project admin role required")
	}
	return nil
}

func (a *MembershipAuthority) isOwner(ctx context.Context, userID, projectID uint) (bool, error) {
	p, err := a.projects.FindByID(ctx, projectID)
	if err != nil {
		return false, domain.Storage("failed to load project", err)
	}
	return p != nil && p.OwnerID == userID, nil
}
