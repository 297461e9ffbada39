package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

// Visible limits a csv_uploads query to uploads that were not soft-deleted.
// Every read path goes through it.
func Visible(db *gorm.DB) *gorm.DB {
	return db.Where("csv_uploads.is_deleted = ?", false)
}

type CsvRepo struct{ db *gorm.DB }

func NewCsvRepo(db *gorm.DB) *CsvRepo { return &CsvRepo{db: db} }

func (r *CsvRepo) WithTx(tx *gorm.DB) *CsvRepo { return &CsvRepo{db: tx} }

func (r *CsvRepo) CreateUpload(ctx context.Context, u *domain.CsvUpload) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

// CreateRows batch-inserts rows; batch size comes from the gorm config.
func (r *CsvRepo) CreateRows(ctx context.Context, rows []domain.CsvRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error
}

// UploadRecord is an upload together with its uploader's display name.
type UploadRecord struct {
	domain.CsvUpload
	UploaderName string
}

// FindVisible returns the upload only if it belongs to projectID and is not deleted.
func (r *CsvRepo) FindVisible(ctx context.Context, projectID, uploadID uint) (*UploadRecord, error) {
	var rec UploadRecord
	err := r.db.WithContext(ctx).Model(&domain.CsvUpload{}).Scopes(Visible).
		Select("csv_uploads.*, u.full_name AS uploader_name").
		Joins("LEFT JOIN users u ON u.id = csv_uploads.uploaded_by").
		Where("csv_uploads.id = ? AND csv_uploads.project_id = ?", uploadID, projectID).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *CsvRepo) ListVisible(ctx context.Context, projectID uint) ([]domain.UploadSummary, error) {
	var rows []UploadRecord
	err := r.db.WithContext(ctx).Model(&domain.CsvUpload{}).Scopes(Visible).
		Select("csv_uploads.*, u.full_name AS uploader_name").
		Joins("JOIN users u ON u.id = csv_uploads.uploaded_by").
		Where("csv_uploads.project_id = ?", projectID).
		Order("csv_uploads.uploaded_at DESC").Order("csv_uploads.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.UploadSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UploadSummary{
			ID:             row.ID,
			Filename:       row.Filename,
			UploadDate:     row.CreatedAt,
			RowCount:       row.RowCount,
			ColumnNames:    row.ColumnNames,
			UploadedBy:     row.UploadedBy,
			UploadedByName: row.UploaderName,
		})
	}
	return out, nil
}

// Rows returns the payload of every row of uploadID in original file order.
func (r *CsvRepo) Rows(ctx context.Context, uploadID uint) ([]domain.Row, error) {
	var rows []domain.CsvRow
	err := r.db.WithContext(ctx).
		Select("row_number", "row_data").
		Where("csv_upload_id = ?", uploadID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "row_number"}}). // reserved word in MySQL 8, keep it quoted
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Row, len(rows))
	for i := range rows {
		out[i] = rows[i].RowData
	}
	return out, nil
}

func (r *CsvRepo) CountRows(ctx context.Context, uploadID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.CsvRow{}).Where("csv_upload_id = ?", uploadID).Count(&n).Error
	return n, err
}

// SoftDelete flags a visible upload as deleted and reports whether it did.
func (r *CsvRepo) SoftDelete(ctx context.Context, projectID, uploadID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.CsvUpload{}).Scopes(Visible).
		Where("csv_uploads.id = ? AND csv_uploads.project_id = ?", uploadID, projectID).
		UpdateColumn("is_deleted", true)
	return res.RowsAffected > 0, res.Error
}
