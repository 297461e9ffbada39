package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

type ProjectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) *ProjectRepo { return &ProjectRepo{db: db} }

func (r *ProjectRepo) WithTx(tx *gorm.DB) *ProjectRepo { return &ProjectRepo{db: tx} }

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *ProjectRepo) FindByID(ctx context.Context, id uint) (*domain.Project, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) FindActiveByCode(ctx context.Context, code string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).
		Where("unique_code = ? AND is_active = ?", code, true).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForUser returns every project userID belongs to, most recently joined first.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID uint) ([]domain.UserProject, error) {
	var out []domain.UserProject
	err := r.db.WithContext(ctx).
		Table("project_members AS pm").
		Select("p.id AS project_id, p.name, p.description, p.unique_code, p.owner_id, pm.role, pm.joined_at").
		Joins("JOIN projects p ON p.id = pm.project_id").
		Where("pm.user_id = ? AND p.is_active = ?", userID, true).
		Order("pm.joined_at DESC").Order("p.id DESC").
		Scan(&out).Error
	return out, err
}

// ProjectStat is a project row for the admin console.
type ProjectStat struct {
	domain.Project
	MemberCount int64 `json:"member_count"`
	UploadCount int64 `json:"upload_count"`
}

func (r *ProjectRepo) List(ctx context.Context, offset, limit int) ([]ProjectStat, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	members := r.db.Table("project_members").Select("COUNT(*)").Where("project_members.project_id = projects.id")
	uploads := Visible(r.db.Table("csv_uploads")).Select("COUNT(*)").Where("csv_uploads.project_id = projects.id")

	var out []ProjectStat
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Select("projects.*, (?) AS member_count, (?) AS upload_count", members, uploads).
		Order("projects.id DESC").Offset(offset).Limit(limit).
		Scan(&out).Error
	return out, total, err
}

type MembershipRepo struct{ db *gorm.DB }

func NewMembershipRepo(db *gorm.DB) *MembershipRepo { return &MembershipRepo{db: db} }

func (r *MembershipRepo) WithTx(tx *gorm.DB) *MembershipRepo { return &MembershipRepo{db: tx} }

func (r *MembershipRepo) Create(ctx context.Context, m *domain.ProjectMembership) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

// Find returns nil, nil when userID is not a member of projectID.
func (r *MembershipRepo) Find(ctx context.Context, projectID, userID uint) (*domain.ProjectMembership, error) {
	var m domain.ProjectMembership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepo) Count(ctx context.Context, projectID, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&n).Error
	return n, err
}

func (r *MembershipRepo) ListMembers(ctx context.Context, projectID uint) ([]domain.Member, error) {
	var out []domain.Member
	err := r.db.WithContext(ctx).
		Table("project_members AS pm").
		Select("u.id AS user_id, u.full_name, u.email, pm.role, pm.joined_at").
		Joins("JOIN users u ON u.id = pm.user_id AND u.deleted_at IS NULL").
		Where("pm.project_id = ?", projectID).
		Order("pm.joined_at ASC").Order("pm.id ASC").
		Scan(&out).Error
	return out, err
}
