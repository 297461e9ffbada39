package handler

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/service"
	"github.com/JasjusSirsak/bolususu/internal/transport/http/ez"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
)

// CSV serves ingestion, listing, retrieval and deletion of project uploads.
type CSV struct {
	Base
	CSV *service.CSVService
}

type uploadIn struct {
	Filename    string       `json:"filename"    binding:"required,notblank,max=255"`
	Data        []domain.Row `json:"data"        binding:"required"`
	PrimaryKeys []string     `json:"primaryKeys"`
}

func (h *CSV) MountAPI(api *gin.RouterGroup) {
	e := h.authed(api, "/projects/:projectId")

	ez.RegisterAction(e, ez.Action[uploadIn, service.IngestResult]{
		Method: http.MethodPost,
		Path:   "/upload-csv",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *uploadIn) (service.IngestResult, error) {
			pid, err := ez.PathID(c, "projectId")
			if err != nil {
				return service.IngestResult{}, err
			}
			return h.CSV.Ingest(c.Request.Context(), service.IngestRequest{
				ProjectID:   pid,
				UploaderID:  mdw.UserID(c),
				Filename:    in.Filename,
				Rows:        in.Data,
				PrimaryKeys: in.PrimaryKeys,
			})
		},
	})

	ez.POSTFILES(e, "/upload-csv-file", "file", http.StatusOK,
		func(c *gin.Context, files []*multipart.FileHeader) (service.IngestResult, error) {
			pid, err := ez.PathID(c, "projectId")
			if err != nil {
				return service.IngestResult{}, err
			}
			fh := files[0]
			f, err := fh.Open()
			if err != nil {
				return service.IngestResult{}, domain.InvalidInput("cannot read uploaded file")
			}
			defer f.Close()

			rows, err := ParseCSV(f)
			if err != nil {
				return service.IngestResult{}, err
			}
			return h.CSV.Ingest(c.Request.Context(), service.IngestRequest{
				ProjectID:   pid,
				UploaderID:  mdw.UserID(c),
				Filename:    filepath.Base(strings.ReplaceAll(fh.Filename, `\`, "/")),
				Rows:        rows,
				PrimaryKeys: c.PostFormArray("primaryKeys"),
			})
		})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.UploadSummary]{
		Method: http.MethodGet,
		Path:   "/csv-files",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.UploadSummary, error) {
			pid, err := ez.PathID(c, "projectId")
			if err != nil {
				return nil, err
			}
			return h.CSV.List(c.Request.Context(), pid, mdw.UserID(c))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.UploadDetail]{
		Method: http.MethodGet,
		Path:   "/csv-files/:uploadId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.UploadDetail, error) {
			pid, uid, err := uploadPath(c)
			if err != nil {
				return nil, err
			}
			return h.CSV.Get(c.Request.Context(), pid, uid, mdw.UserID(c))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/csv-files/:uploadId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			pid, uid, err := uploadPath(c)
			if err != nil {
				return nil, err
			}
			if err := h.CSV.Delete(c.Request.Context(), pid, uid, mdw.UserID(c)); err != nil {
				return nil, err
			}
			return gin.H{"id": uid}, nil
		},
	})
}

func uploadPath(c *gin.Context) (projectID, uploadID uint, err error) {
	if projectID, err = ez.PathID(c, "projectId"); err != nil {
		return 0, 0, err
	}
	if uploadID, err = ez.PathID(c, "uploadId"); err != nil {
		return 0, 0, err
	}
	return projectID, uploadID, nil
}
