package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "app:pw@tcp(db:3306)/insight?parseTime=true",
			want: "app:pw@tcp(db:3306)/insight?parseTime=true",
		},
		{
			name: "url with jdbc params",
			in:   "jdbc:mysql://db:3306/insight?useSSL=false&characterEncoding=utf8&serverTimezone=UTC",
			user: "bolususu",
			pass: "secret",
			want: "bolususu:secret@tcp(db:3306)/insight?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "credentials in url",
			in:   "mysql://root:pw@localhost:3306/insight",
			want: "root:pw@tcp(localhost:3306)/insight?charset=utf8mb4&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db)/x", maskDSN("root:hunter2@tcp(db)/x"))
	assert.Equal(t, "tcp(db)/x", maskDSN("tcp(db)/x"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestSQLite_MigrateAndDuplicateKey(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:dbtest%d?mode=memory&cache=shared", time.Now().UnixNano()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))

	u := domain.User{Email: "a@example.com", FullName: "A", PasswordHash: "x", Role: domain.UserRoleUser}
	require.NoError(t, db.Create(&u).Error)

	dup := domain.User{Email: "a@example.com", FullName: "B", PasswordHash: "x", Role: domain.UserRoleUser}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
	assert.False(t, IsDuplicateKey(nil))
}
