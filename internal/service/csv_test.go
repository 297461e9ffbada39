package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

func TestCSVService_IngestRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	p := env.project(t, alice)

	rows := []domain.Row{
		domain.NewRow("zeta", "a", "alpha", json.Number("10"), "mid", true),
		domain.NewRow("zeta", "b", "alpha", json.Number("2.50"), "mid", nil),
	}
	res, err := env.csv.Ingest(ctx, IngestRequest{
		ProjectID:   p.ID,
		UploaderID:  alice.ID,
		Filename:    " sales.csv ",
		Rows:        rows,
		PrimaryKeys: []string{"zeta", "zeta"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", res.Filename)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, res.Columns)

	got, err := env.csv.Get(ctx, p.ID, res.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", got.Filename)
	assert.Equal(t, 2, got.RowCount)
	assert.Equal(t, 3, got.ColumnCount)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got.ColumnNames)
	assert.Equal(t, []string{"zeta"}, got.PrimaryKeys)
	assert.Equal(t, "alice", got.UploadedBy)
	require.Len(t, got.Rows, 2)

	for i := range rows {
		want, err := json.Marshal(rows[i])
		require.NoError(t, err)
		have, err := json.Marshal(got.Rows[i])
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(have))
		assert.Equal(t, rows[i].Keys(), got.Rows[i].Keys())
	}
	v, _ := got.Rows[1].Get("alpha")
	assert.Equal(t, json.Number("2.50"), v)

	n, err := env.csvRepo.CountRows(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(got.RowCount), n)
}

func TestCSVService_IngestLargeFileKeepsOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	p := env.project(t, alice)

	rows := make([]domain.Row, 450)
	for i := range rows {
		rows[i] = domain.NewRow("n", json.Number(jsonInt(i)))
	}
	res := env.ingest(t, alice, p, rows)
	assert.Equal(t, 450, res.RowCount)

	got, err := env.csv.Get(ctx, p.ID, res.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Rows, 450)
	for i, r := range got.Rows {
		v, _ := r.Get("n")
		require.Equal(t, json.Number(jsonInt(i)), v)
	}
}

func jsonInt(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}

func TestCSVService_IngestValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	p := env.project(t, alice)

	cases := map[string]IngestRequest{
		"no filename": {Filename: "  ", Rows: productRows()},
		"no rows":     {Filename: "x.csv"},
		"empty row":   {Filename: "x.csv", Rows: []domain.Row{{}}},
		"heterogeneous": {Filename: "x.csv", Rows: []domain.Row{
			domain.NewRow("a", "1", "b", "2"),
			domain.NewRow("a", "1", "c", "2"),
		}},
		"unknown primary key": {Filename: "x.csv", Rows: productRows(), PrimaryKeys: []string{"sku"}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			req.ProjectID = p.ID
			req.UploaderID = alice.ID
			_, err := env.csv.Ingest(ctx, req)
			assert.True(t, domain.Is(err, domain.KindInvalidInput), "got %v", err)
		})
	}

	var n int64
	require.NoError(t, env.db.Model(&domain.CsvUpload{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCSVService_IngestRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	p := env.project(t, alice)

	_, err := env.csv.Ingest(context.Background(), IngestRequest{
		ProjectID: p.ID, UploaderID: mallory.ID, Filename: "x.csv", Rows: productRows(),
	})
	assert.True(t, domain.Is(err, domain.KindForbidden))
}

func TestCSVService_IngestIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	p := env.project(t, alice)

	boom := errors.New("disk full")
	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("test:fail_rows", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "csv_data" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := env.csv.Ingest(ctx, IngestRequest{
		ProjectID: p.ID, UploaderID: alice.ID, Filename: "x.csv", Rows: productRows(),
	})
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.KindStorage))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "failed to upload CSV", domain.PublicMessage(err))

	var uploads, rows int64
	require.NoError(t, env.db.Model(&domain.CsvUpload{}).Count(&uploads).Error)
	require.NoError(t, env.db.Model(&domain.CsvRow{}).Count(&rows).Error)
	assert.Zero(t, uploads)
	assert.Zero(t, rows)
}

func TestCSVService_ListNewestFirstAndHidesDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	p := env.project(t, alice)
	other := env.project(t, alice)

	first := env.ingest(t, alice, p, productRows())
	second := env.ingest(t, alice, p, productRows())
	env.ingest(t, alice, other, productRows())

	list, err := env.csv.List(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "alice", list[0].UploadedByName)
	assert.Equal(t, []string{"id", "name", "price"}, list[0].ColumnNames)

	require.NoError(t, env.csv.Delete(ctx, p.ID, second.ID, alice.ID))

	list, err = env.csv.List(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	_, err = env.csv.Get(ctx, p.ID, second.ID, alice.ID)
	assert.True(t, domain.Is(err, domain.KindNotFound))

	// rows stay in storage after a soft delete
	n, err := env.csvRepo.CountRows(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCSVService_ListEmptyAndForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	p := env.project(t, alice)

	list, err := env.csv.List(ctx, p.ID, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = env.csv.List(ctx, p.ID, mallory.ID)
	assert.True(t, domain.Is(err, domain.KindForbidden))
}

func TestCSVService_GetHidesUploadsFromOutsiders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	p := env.project(t, alice)
	res := env.ingest(t, alice, p, productRows())

	_, err := env.csv.Get(ctx, p.ID, res.ID, mallory.ID)
	assert.True(t, domain.Is(err, domain.KindNotFound))

	// an upload addressed through the wrong project is not found either
	q := env.project(t, alice)
	_, err = env.csv.Get(ctx, q.ID, res.ID, alice.ID)
	assert.True(t, domain.Is(err, domain.KindNotFound))
}

func TestCSVService_DeletePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice") // owner, admin
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")
	mallory := env.user(t, "mallory")
	p := env.project(t, alice)
	env.join(t, bob, p)
	env.join(t, carol, p)

	bobs := env.ingest(t, bob, p, productRows())
	alices := env.ingest(t, alice, p, productRows())

	err := env.csv.Delete(ctx, p.ID, alices.ID, bob.ID)
	assert.True(t, domain.Is(err, domain.KindForbidden), "member cannot delete another's upload")

	err = env.csv.Delete(ctx, p.ID, bobs.ID, mallory.ID)
	assert.True(t, domain.Is(err, domain.KindForbidden), "outsider cannot delete")

	err = env.csv.Delete(ctx, p.ID, 99999, bob.ID)
	assert.True(t, domain.Is(err, domain.KindNotFound))

	// uploader deletes own file
	require.NoError(t, env.csv.Delete(ctx, p.ID, bobs.ID, bob.ID))
	err = env.csv.Delete(ctx, p.ID, bobs.ID, bob.ID)
	assert.True(t, domain.Is(err, domain.KindNotFound), "second delete finds nothing")

	// admin deletes someone else's file
	carols := env.ingest(t, carol, p, productRows())
	require.NoError(t, env.csv.Delete(ctx, p.ID, carols.ID, alice.ID))
}

func TestCSVService_OwnerCanDeleteWithoutMembershipRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	p := env.project(t, alice)
	env.join(t, bob, p)
	res := env.ingest(t, bob, p, productRows())

	require.NoError(t, env.db.Model(&domain.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", p.ID, alice.ID).
		Update("role", domain.RoleMember).Error)

	require.NoError(t, env.csv.Delete(ctx, p.ID, res.ID, alice.ID))
}

// Two users sharing a project see each other's uploads; a third user sees nothing.
func TestCSVService_SharedProjectScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a")
	b := env.user(t, "b")
	c := env.user(t, "c")

	p := env.project(t, a)
	env.join(t, b, p)

	fromA := env.ingest(t, a, p, productRows())
	fromB := env.ingest(t, b, p, []domain.Row{domain.NewRow("k", "v")})

	for _, u := range []*domain.User{a, b} {
		list, err := env.csv.List(ctx, p.ID, u.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		got, err := env.csv.Get(ctx, p.ID, fromA.ID, u.ID)
		require.NoError(t, err)
		assert.Len(t, got.Rows, 3)
	}

	_, err := env.csv.List(ctx, p.ID, c.ID)
	assert.True(t, domain.Is(err, domain.KindForbidden))
	_, err = env.csv.Get(ctx, p.ID, fromB.ID, c.ID)
	assert.True(t, domain.Is(err, domain.KindNotFound))

	err = env.csv.Delete(ctx, p.ID, fromA.ID, b.ID)
	assert.True(t, domain.Is(err, domain.KindForbidden))
	require.NoError(t, env.csv.Delete(ctx, p.ID, fromB.ID, a.ID))

	list, err := env.csv.List(ctx, p.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fromA.ID, list[0].ID)
}
