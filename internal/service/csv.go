package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JasjusSirsak/bolususu/internal/core/cache"
	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/repo"
)

// CSVService owns ingestion, listing, retrieval and soft deletion of uploads.
type CSVService struct {
	db       *gorm.DB
	csv      *repo.CsvRepo
	authz    *MembershipAuthority
	cache    *cache.Cache // optional
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewCSVService(db *gorm.DB, csv *repo.CsvRepo, authz *MembershipAuthority, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CSVService {
	return &CSVService{db: db, csv: csv, authz: authz, cache: c, cacheTTL: ttl, log: l}
}

type IngestRequest struct {
	ProjectID   uint
	UploaderID  uint
	Filename    string
	Rows        []domain.Row
	PrimaryKeys []string
}

type IngestResult struct {
	ID       uint     `json:"id"`
	Filename string   `json:"filename"`
	RowCount int      `json:"rowCount"`
	Columns  []string `json:"columns"`
}

// Ingest validates the payload, checks membership, then writes the metadata
// record and every row in one transaction. Nothing is written on failure.
func (s *CSVService) Ingest(ctx context.Context, req IngestRequest) (res IngestResult, err error) {
	defer func() { csvIngestTotal.WithLabelValues(outcome(err)).Inc() }()

	filename := strings.TrimSpace(req.Filename)
	columns, err := validateRows(filename, req.Rows)
	if err != nil {
		return IngestResult{}, err
	}
	pks, err := validatePrimaryKeys(req.PrimaryKeys, columns)
	if err != nil {
		return IngestResult{}, err
	}
	if _, err := s.authz.RequireMember(ctx, req.UploaderID, req.ProjectID); err != nil {
		return IngestResult{}, err
	}

	upload := &domain.CsvUpload{
		ProjectID:   req.ProjectID,
		UploadedBy:  req.UploaderID,
		Filename:    filename,
		RowCount:    len(req.Rows),
		ColumnCount: len(columns),
		ColumnNames: columns,
		PrimaryKeys: pks,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		csv := s.csv.WithTx(tx)
		if err := csv.CreateUpload(ctx, upload); err != nil {
			return fmt.Errorf("insert metadata: %w", err)
		}
		rows := make([]domain.CsvRow, len(req.Rows))
		for i, r := range req.Rows {
			rows[i] = domain.CsvRow{CsvUploadID: upload.ID, RowNumber: i + 1, RowData: r}
		}
		if err := csv.CreateRows(ctx, rows); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return IngestResult{}, domain.Storage("failed to upload CSV", err)
	}

	csvIngestRows.Add(float64(upload.RowCount))
	s.log.Info("csv ingested",
		zap.Uint("upload_id", upload.ID),
		zap.Uint("project_id", upload.ProjectID),
		zap.Uint("uploaded_by", upload.UploadedBy),
		zap.Int("rows", upload.RowCount),
		zap.Int("columns", upload.ColumnCount),
	)
	return IngestResult{ID: upload.ID, Filename: filename, RowCount: upload.RowCount, Columns: columns}, nil
}

// validateRows returns the column list taken from the first row after checking
// every row carries exactly that column set.
func validateRows(filename string, rows []domain.Row) ([]string, error) {
	if filename == "" {
		return nil, domain.InvalidInput("invalid data, filename and data array required")
	}
	if len(rows) == 0 {
		return nil, domain.InvalidInput("invalid data, filename and data array required")
	}
	columns := rows[0].Keys()
	if len(columns) == 0 {
		return nil, domain.InvalidInput("invalid data, first row has no columns")
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i].SameKeys(rows[0]) {
			return nil, domain.Invalidf("row %d does not match the columns of row 1", i+1)
		}
	}
	return columns, nil
}

func validatePrimaryKeys(pks, columns []string) ([]string, error) {
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	out := make([]string, 0, len(pks))
	seen := make(map[string]struct{}, len(pks))
	for _, pk := range pks {
		if _, ok := known[pk]; !ok {
			return nil, domain.Invalidf("primary key %q is not a column", pk)
		}
		if _, dup := seen[pk]; dup {
			continue
		}
		seen[pk] = struct{}{}
		out = append(out, pk)
	}
	return out, nil
}

// List returns the project's visible uploads, newest first.
func (s *CSVService) List(ctx context.Context, projectID, callerID uint) ([]domain.UploadSummary, error) {
	if _, err := s.authz.RequireMember(ctx, callerID, projectID); err != nil {
		return nil, err
	}
	out, err := s.csv.ListVisible(ctx, projectID)
	if err != nil {
		return nil, domain.Storage("failed to fetch CSV files", err)
	}
	return out, nil
}

var errUploadNotFound = domain.NotFound("CSV file not found or access denied")

// Get returns one visible upload with its rows in original order. A caller
// outside the project gets the same NotFound as a missing upload.
func (s *CSVService) Get(ctx context.Context, projectID, uploadID, callerID uint) (*domain.UploadDetail, error) {
	_, member, err := s.authz.RoleOf(ctx, callerID, projectID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errUploadNotFound
	}
	rec, err := s.csv.FindVisible(ctx, projectID, uploadID)
	if err != nil {
		return nil, domain.Storage("failed to fetch CSV data", err)
	}
	if rec == nil {
		return nil, errUploadNotFound
	}

	// row sets are immutable once ingested
	rows, err := cache.GetOrLoadJSON(s.cache, ctx, fmt.Sprintf("csv:rows:%d", rec.ID), s.cacheTTL,
		func(ctx context.Context) ([]domain.Row, error) { return s.csv.Rows(ctx, rec.ID) })
	if err != nil {
		return nil, domain.Storage("failed to fetch CSV data", err)
	}
	if len(rows) != rec.RowCount {
		s.log.Error("row count mismatch",
			zap.Uint("upload_id", rec.ID), zap.Int("declared", rec.RowCount), zap.Int("stored", len(rows)))
	}
	if rows == nil {
		rows = []domain.Row{}
	}

	return &domain.UploadDetail{
		ID:          rec.ID,
		ProjectID:   rec.ProjectID,
		Filename:    rec.Filename,
		UploadDate:  rec.CreatedAt,
		RowCount:    rec.RowCount,
		ColumnCount: rec.ColumnCount,
		ColumnNames: rec.ColumnNames,
		PrimaryKeys: rec.PrimaryKeys,
		UploadedBy:  rec.UploaderName,
		Rows:        rows,
	}, nil
}

// Delete soft-deletes an upload. Only the uploader or a project admin (the
// owner counts as one) may do it. Checks and update share one transaction.
func (s *CSVService) Delete(ctx context.Context, projectID, uploadID, callerID uint) (err error) {
	defer func() { csvDeleteTotal.WithLabelValues(outcome(err)).Inc() }()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authz := s.authz.WithTx(tx)
		csv := s.csv.WithTx(tx)

		if _, err := authz.RequireMember(ctx, callerID, projectID); err != nil {
			return err
		}
		rec, err := csv.FindVisible(ctx, projectID, uploadID)
		if err != nil {
			return domain.Storage("failed to delete CSV", err)
		}
		if rec == nil {
			return domain.NotFound("CSV file not found or already deleted")
		}
		if rec.UploadedBy != callerID {
			if err := authz.RequireAdminOrOwner(ctx, callerID, projectID); err != nil {
				if domain.Is(err, domain.KindForbidden) {
					return domain.Forbidden("permission denied, only the uploader or a project admin can delete this file")
				}
				return err
			}
		}
		ok, err := csv.SoftDelete(ctx, projectID, uploadID)
		if err != nil {
			return domain.Storage("failed to delete CSV", err)
		}
		if !ok {
			return domain.NotFound("CSV file not found or already deleted")
		}
		return nil
	})
	if err != nil {
		var de *domain.Error
		if !errors.As(err, &de) {
			err = domain.Storage("failed to delete CSV", err)
		}
		return err
	}
	s.log.Info("csv soft-deleted", zap.Uint("upload_id", uploadID), zap.Uint("project_id", projectID), zap.Uint("by", callerID))
	return nil
}
