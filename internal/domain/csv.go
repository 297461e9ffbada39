package domain

import "time"

type CsvUpload struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;index:idx_upload_project_visible" json:"project_id"`
	UploadedBy  uint      `gorm:"not null;index" json:"uploaded_by"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	RowCount    int       `gorm:"not null" json:"row_count"`
	ColumnCount int       `gorm:"not null" json:"column_count"`
	ColumnNames []string  `gorm:"type:text;serializer:json;not null" json:"column_names"`
	PrimaryKeys []string  `gorm:"type:text;serializer:json;not null" json:"primary_keys"`
	IsDeleted   bool      `gorm:"not null;default:false;index:idx_upload_project_visible" json:"-"`
	CreatedAt   time.Time `gorm:"column:uploaded_at;autoCreateTime" json:"upload_date"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Uploader User   `gorm:"foreignKey:UploadedBy;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (CsvUpload) TableName() string { return "csv_uploads" }

type CsvRow struct {
	ID          uint `gorm:"primaryKey" json:"-"`
	CsvUploadID uint `gorm:"not null;uniqueIndex:idx_upload_row" json:"-"`
	RowNumber   int  `gorm:"not null;uniqueIndex:idx_upload_row" json:"row_number"`
	RowData     Row  `gorm:"type:text;not null" json:"row_data"`

	Upload CsvUpload `gorm:"foreignKey:CsvUploadID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (CsvRow) TableName() string { return "csv_data" }

// UploadSummary is one line of a project's file list.
type UploadSummary struct {
	ID             uint      `json:"id"`
	Filename       string    `json:"filename"`
	UploadDate     time.Time `json:"upload_date"`
	RowCount       int       `json:"row_count"`
	ColumnNames    []string  `json:"column_names"`
	UploadedBy     uint      `json:"uploaded_by"`
	UploadedByName string    `json:"uploaded_by_name"`
}

// UploadDetail is one upload with every row in original file order.
type UploadDetail struct {
	ID          uint      `json:"id"`
	ProjectID   uint      `json:"project_id"`
	Filename    string    `json:"filename"`
	UploadDate  time.Time `json:"upload_date"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
	ColumnNames []string  `json:"column_names"`
	PrimaryKeys []string  `json:"primary_keys"`
	UploadedBy  string    `json:"uploaded_by"`
	Rows        []Row     `json:"rows"`
}
