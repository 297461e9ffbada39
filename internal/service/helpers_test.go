package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JasjusSirsak/bolususu/internal/core/auth"
	"github.com/JasjusSirsak/bolususu/internal/core/database"
	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/repo"
)

var dbSeq atomic.Int64

type testEnv struct {
	db       *gorm.DB
	jwt      *auth.JWTer
	users    *repo.UserRepo
	csvRepo  *repo.CsvRepo
	identity *IdentityVerifier
	authz    *MembershipAuthority
	projects *ProjectRegistry
	csv      *CSVService
	accounts *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:svc%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), dbSeq.Add(1)),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	j := &auth.JWTer{Secret: []byte("test"), Issuer: "test", TTL: time.Hour}
	users := repo.NewUserRepo(db)
	projects := repo.NewProjectRepo(db)
	members := repo.NewMembershipRepo(db)
	csvRepo := repo.NewCsvRepo(db)
	authz := NewMembershipAuthority(projects, members)

	return &testEnv{
		db:       db,
		jwt:      j,
		users:    users,
		csvRepo:  csvRepo,
		identity: NewIdentityVerifier(j, users),
		authz:    authz,
		projects: NewProjectRegistry(db, projects, members, authz, log),
		csv:      NewCSVService(db, csvRepo, authz, nil, time.Minute, log),
		accounts: NewUserService(users, repo.NewPreferenceRepo(db), j, log),
	}
}

func (e *testEnv) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := e.accounts.Register(context.Background(), RegisterInput{
		FullName: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) project(t *testing.T, owner *domain.User) *domain.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), owner.ID, "Project of "+owner.FullName, "")
	require.NoError(t, err)
	return p
}

func (e *testEnv) join(t *testing.T, u *domain.User, p *domain.Project) {
	t.Helper()
	_, err := e.projects.Join(context.Background(), u.ID, p.UniqueCode)
	require.NoError(t, err)
}

func productRows() []domain.Row {
	return []domain.Row{
		domain.NewRow("id", "1", "name", "Apple", "price", "1.20"),
		domain.NewRow("id", "2", "name", "Banana", "price", "0.50"),
		domain.NewRow("id", "3", "name", "Cherry", "price", "3.75"),
	}
}

func (e *testEnv) ingest(t *testing.T, u *domain.User, p *domain.Project, rows []domain.Row) IngestResult {
	t.Helper()
	res, err := e.csv.Ingest(context.Background(), IngestRequest{
		ProjectID:  p.ID,
		UploaderID: u.ID,
		Filename:   "products.csv",
		Rows:       rows,
	})
	require.NoError(t, err)
	return res
}
