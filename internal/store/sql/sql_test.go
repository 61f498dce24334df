package sql

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/penline/core/internal/pkg/apperr"
	"github.com/penline/core/internal/store"
	"github.com/penline/core/internal/store/storetest"
)

// Set PENLINE_TEST_MYSQL_DSN to run the contract against a live server.
// The tables in that database are truncated between cases.
func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("PENLINE_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("PENLINE_TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	storetest.Run(t, func(t *testing.T) store.Store {
		for _, table := range []string{"posts", "categories", "users"} {
			require.NoError(t, db.Exec(fmt.Sprintf("DELETE FROM `%s`", table)).Error)
		}
		return New(db)
	})
}

func TestDuplicateField(t *testing.T) {
	cases := []struct{ msg, want string }{
		{"Duplicate entry 'hello' for key 'posts.idx_posts_slug'", store.FieldSlug},
		{"Duplicate entry 'a@b.c' for key 'users.idx_users_email'", store.FieldEmail},
		{"Duplicate entry 'React' for key 'idx_categories_name'", store.FieldName},
		{"Duplicate entry '65f0c0ffee' for key 'posts.PRIMARY'", "_id"},
		{"something unrelated", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, duplicateField(tc.msg), tc.msg)
	}
}

func TestMapWriteError(t *testing.T) {
	err := mapWriteError(fmt.Errorf("insert: %w", &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'hello' for key 'posts.idx_posts_slug'",
	}))
	assert.True(t, apperr.IsDuplicate(err, store.FieldSlug), "got %v", err)

	other := &mysql.MySQLError{Number: 1045, Message: "Access denied"}
	assert.Equal(t, error(other), mapWriteError(other))

	assert.NoError(t, mapWriteError(nil))
	assert.False(t, apperr.IsDuplicate(mapWriteError(errors.New("boom")), ""))
}
