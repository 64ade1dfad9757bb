package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `
create table if not exists note (
	id integer primary key,
	body text not null
);
`

func TestOpenAndMigrateDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := OpenAndMigrateDB(testSchema, path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec("insert into note (body) values (?)", "hello")
	if err != nil {
		t.Fatal(err)
	}
	require.NoError(t, db.Close())

	// applying the schema a second time keeps the data
	db, err = OpenAndMigrateDB(testSchema, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var body string
	err = db.QueryRow("select body from note").Scan(&body)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "hello", body)
}

func TestOpenAndMigrateDBInvalidSchema(t *testing.T) {
	_, err := OpenAndMigrateDB("create tabel oops", MemoryPath)
	require.Error(t, err)
}
