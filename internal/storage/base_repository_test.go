package storage

import "testing"

func TestRebindLeavesSQLiteAndMySQLPlaceholdersAlone(t *testing.T) {
	for _, dialect := range []Dialect{DialectSQLite, DialectMySQL} {
		b := baseRepository{dialect: dialect}
		query := "SELECT id FROM chats WHERE user_id = ? AND name = ?"
		if got := b.rebind(query); got != query {
			t.Errorf("rebind(%s, %q) = %q, want unchanged", dialect, query, got)
		}
	}
}

func TestRebindTranslatesPlaceholdersForPostgreSQL(t *testing.T) {
	b := baseRepository{dialect: DialectPostgreSQL}
	query := "SELECT id FROM chats WHERE user_id = ? AND name = ?"
	want := "SELECT id FROM chats WHERE user_id = $1 AND name = $2"
	if got := b.rebind(query); got != want {
		t.Errorf("rebind(postgresql, %q) = %q, want %q", query, got, want)
	}
}
