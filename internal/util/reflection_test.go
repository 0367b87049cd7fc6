package util

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Audit struct {
	CreatedAt time.Time `db:"created_at"`
}

type testUser struct {
	ID       int            `db:"id,pk"`
	Name     string         `db:"name"`
	Email    string         `db:"email,omitempty"`
	Nick     sql.NullString `db:"nick"`
	internal string
	Ignored  int `db:"-"`
	Status   string
	Audit
}

type noTags struct {
	ID   int
	Name string
}

type composite struct {
	TenantID int    `db:"tenant_id,pk"`
	UserID   int    `db:"user_id,pk"`
	Role     string `db:"role"`
}

func TestFields(t *testing.T) {
	fields := Fields(reflect.TypeOf(&testUser{}))

	var cols []string
	for _, f := range fields {
		cols = append(cols, f.Column)
	}
	assert.Equal(t, []string{"id", "name", "email", "nick", "Status", "created_at"}, cols)
	assert.True(t, fields[0].Primary)
	assert.True(t, fields[2].OmitEmpty)
	assert.Equal(t, []int{7, 0}, fields[5].Index)
}

func TestStructToMap(t *testing.T) {
	u := testUser{ID: 1, Name: "Alice", Status: "active", internal: "x", Ignored: 9}

	m, err := StructToMap(&u)
	require.NoError(t, err)

	assert.Equal(t, 1, m["id"])
	assert.Equal(t, "Alice", m["name"])
	assert.Equal(t, "active", m["Status"])
	assert.Equal(t, sql.NullString{}, m["nick"])
	assert.NotContains(t, m, "email")
	assert.NotContains(t, m, "internal")
	assert.NotContains(t, m, "Ignored")
	assert.Contains(t, m, "created_at")

	u.Email = "a@example.com"
	m, err = StructToMap(u)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", m["email"])
}

func TestStructToMap_Errors(t *testing.T) {
	var nilUser *testUser
	_, err := StructToMap(nilUser)
	assert.Error(t, err)

	_, err = StructToMap(42)
	assert.ErrorContains(t, err, "expected struct")
}

func TestPrimaryColumns(t *testing.T) {
	assert.Equal(t, []string{"id"}, PrimaryColumns(reflect.TypeOf(testUser{})))
	assert.Equal(t, []string{"ID"}, PrimaryColumns(reflect.TypeOf(noTags{})))
	assert.Equal(t, []string{"tenant_id", "user_id"}, PrimaryColumns(reflect.TypeOf(composite{})))
	assert.Nil(t, PrimaryColumns(reflect.TypeOf(struct{ Name string }{})))
}

func TestFieldByColumn(t *testing.T) {
	u := &testUser{}

	f, ok := FieldByColumn(u, "id")
	require.True(t, ok)
	f.SetInt(42)
	assert.Equal(t, 42, u.ID)

	_, ok = FieldByColumn(u, "missing")
	assert.False(t, ok)

	_, ok = FieldByColumn(testUser{}, "id")
	assert.False(t, ok)
}
