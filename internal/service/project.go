package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JasjusSirsak/bolususu/internal/core/database"
	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/repo"
	"github.com/JasjusSirsak/bolususu/pkg/utils"
)

const maxCodeAttempts = 5

var errCodeTaken = errors.New("join code already in use")

type ProjectRegistry struct {
	db       *gorm.DB
	projects *repo.ProjectRepo
	members  *repo.MembershipRepo
	authz    *MembershipAuthority
	log      *zap.Logger

	// NewCode generates join codes; replaceable in tests.
	NewCode func() (string, error)
}

func NewProjectRegistry(db *gorm.DB, projects *repo.ProjectRepo, members *repo.MembershipRepo, authz *MembershipAuthority, l *zap.Logger) *ProjectRegistry {
	return &ProjectRegistry{
		db:       db,
		projects: projects,
		members:  members,
		authz:    authz,
		log:      l,
		NewCode:  utils.NewJoinCode,
	}
}

// Create inserts the project and the owner's admin membership atomically.
// A join-code collision rolls the attempt back and retries with a fresh code.
func (s *ProjectRegistry) Create(ctx context.Context, ownerID uint, name, description string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidInput("project name is required")
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.NewCode()
		if err != nil {
			return nil, domain.Storage("failed to generate join code", err)
		}
		p := &domain.Project{
			Name:        name,
			Description: strings.TrimSpace(description),
			OwnerID:     ownerID,
			UniqueCode:  code,
			IsActive:    true,
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.projects.WithTx(tx).Create(ctx, p); err != nil {
				if database.IsDuplicateKey(err) {
					return errCodeTaken
				}
				return err
			}
			return s.members.WithTx(tx).Create(ctx, &domain.ProjectMembership{
				ProjectID: p.ID,
				UserID:    ownerID,
				Role:      domain.RoleAdmin,
			})
		})
		if errors.Is(err, errCodeTaken) {
			s.log.Warn("join code collision, retrying", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, domain.Storage("failed to create project", err)
		}
		return p, nil
	}
	return nil, domain.Storage("failed to create project", errCodeTaken)
}

type JoinResult struct {
	ProjectID   uint        `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Role        domain.Role `json:"role"`
}

// Join enrolls userID as a plain member of the active project owning code.
func (s *ProjectRegistry) Join(ctx context.Context, userID uint, code string) (JoinResult, error) {
	code = utils.NormalizeJoinCode(code)
	if code == "" {
		return JoinResult{}, domain.InvalidInput("unique code is required")
	}
	p, err := s.projects.FindActiveByCode(ctx, code)
	if err != nil {
		return JoinResult{}, domain.Storage("failed to join project", err)
	}
	if p == nil {
		return JoinResult{}, domain.NotFound("invalid unique code or project not found")
	}

	n, err := s.members.Count(ctx, p.ID, userID)
	if err != nil {
		return JoinResult{}, domain.Storage("failed to join project", err)
	}
	if n > 0 {
		return JoinResult{}, alreadyMember()
	}
	err = s.members.Create(ctx, &domain.ProjectMembership{ProjectID: p.ID, UserID: userID, Role: domain.RoleMember})
	if database.IsDuplicateKey(err) {
		// lost a race with a concurrent join for the same user
		return JoinResult{}, alreadyMember()
	}
	if err != nil {
		return JoinResult{}, domain.Storage("failed to join project", err)
	}
	return JoinResult{ProjectID: p.ID, ProjectName: p.Name, Role: domain.RoleMember}, nil
}

func alreadyMember() error {
	return domain.Conflict("you are already a member of this project")
}

func (s *ProjectRegistry) ListForUser(ctx context.Context, userID uint) ([]domain.UserProject, error) {
	out, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, domain.Storage("failed to fetch user projects", err)
	}
	if out == nil {
		out = []domain.UserProject{}
	}
	return out, nil
}

// Members lists the project's members; only members may see it.
func (s *ProjectRegistry) Members(ctx context.Context, projectID, callerID uint) ([]domain.Member, error) {
	if _, err := s.authz.RequireMember(ctx, callerID, projectID); err != nil {
		return nil, err
	}
	out, err := s.members.ListMembers(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("failed to fetch project members", err)
	}
	if out == nil {
		out = []domain.Member{}
	}
	return out, nil
}

// ListAll is the admin console's project listing.
func (s *ProjectRegistry) ListAll(ctx context.Context, offset, limit int) ([]repo.ProjectStat, int64, error) {
	out, total, err := s.projects.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, domain.Storage("failed to list projects", err)
	}
	if out == nil {
		out = []repo.ProjectStat{}
	}
	return out, total, nil
}
