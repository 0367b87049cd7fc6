package core

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Accessors(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	r := Record{
		"id":      int64(7),
		"name":    "Alice",
		"score":   "2.5",
		"active":  "1",
		"flag":    true,
		"created": "2024-03-01 10:30:00",
		"at":      ts,
		"note":    nil,
	}

	assert.True(t, r.Has("note"))
	assert.False(t, r.Has("missing"))
	assert.True(t, r.IsNull("note"))
	assert.True(t, r.IsNull("missing"))
	assert.False(t, r.IsNull("id"))
	assert.Equal(t, []string{"active", "at", "created", "flag", "id", "name", "note", "score"}, r.Keys())

	assert.Equal(t, "7", r.String("id"))
	assert.Equal(t, "", r.String("note"))
	assert.Equal(t, "2024-03-01 10:30:00", r.String("at"))

	n, err := r.Int64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	n, err = r.Int64("flag")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = r.Int64("name")
	assert.Error(t, err)

	f, err := r.Float64("score")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 1e-9)

	b, err := r.Bool("active")
	require.NoError(t, err)
	assert.True(t, b)
	b, err = r.Bool("note")
	require.NoError(t, err)
	assert.False(t, b)
	_, err = r.Bool("at")
	assert.Error(t, err)

	b, err = Record{"n": 3}.Bool("n")
	require.NoError(t, err)
	assert.True(t, b)
	b, err = Record{"n": "0"}.Bool("n")
	require.NoError(t, err)
	assert.False(t, b)

	n, err = Record{"n": uint32(9)}.Int64("n")
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
	_, err = Record{"n": uint64(math.MaxUint64)}.Int64("n")
	assert.Error(t, err)

	f, err = Record{"f": []byte("1.25")}.Float64("f")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, f, 1e-9)

	got, err := r.Time("created")
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))
	zero, err := r.Time("note")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestRecord_Clone(t *testing.T) {
	r := Record{"a": 1}
	c := r.Clone()
	c["a"] = 2
	c["b"] = 3
	assert.Equal(t, Record{"a": 1}, r)
}

func TestScanRecords(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id", "body"}).
		AddRow(int64(1), []byte("one")).
		AddRow(int64(2), nil).
		AddRow(int64(3), []byte("three")))

	rows, err := sqlDB.Query("SELECT id, body FROM notes")
	require.NoError(t, err)
	defer rows.Close()

	records, err := scanRecords(rows, 2)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"id": int64(1), "body": "one"}, {"id": int64(2), "body": nil}}, records)
}

type Base struct {
	ID      int64     `db:"id,pk"`
	Created time.Time `db:"created_at"`
}

type article struct {
	Base
	Title   string         `db:"title"`
	Views   int            `db:"views"`
	Rating  float64        `db:"rating"`
	Public  bool           `db:"public"`
	Summary *string        `db:"summary"`
	Body    []byte         `db:"body"`
	Author  sql.NullString `db:"author"`
	Secret  string         `db:"-"`
	Slug    string
}

func TestDecodeRecord(t *testing.T) {
	rec := Record{
		"id":         int64(5),
		"created_at": "2024-01-02 03:04:05",
		"title":      "Hello",
		"views":      "12",
		"rating":     int64(4),
		"public":     int64(1),
		"summary":    "short",
		"body":       "text",
		"author":     "bob",
		"Secret":     "x",
		"slug":       "hello",
		"unknown":    1,
	}

	var a article
	require.NoError(t, decodeRecord(rec, &a))
	assert.Equal(t, int64(5), a.ID)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), a.Created)
	assert.Equal(t, "Hello", a.Title)
	assert.Equal(t, 12, a.Views)
	assert.InDelta(t, 4.0, a.Rating, 1e-9)
	assert.True(t, a.Public)
	require.NotNil(t, a.Summary)
	assert.Equal(t, "short", *a.Summary)
	assert.Equal(t, []byte("text"), a.Body)
	assert.Equal(t, sql.NullString{String: "bob", Valid: true}, a.Author)
	assert.Empty(t, a.Secret)
	assert.Equal(t, "hello", a.Slug)

	require.NoError(t, decodeRecord(Record{"summary": nil, "author": nil}, &a))
	assert.Nil(t, a.Summary)
	assert.False(t, a.Author.Valid)
}

func TestDecodeRecord_Errors(t *testing.T) {
	var a article
	assert.ErrorContains(t, decodeRecord(Record{}, a), "scanner: dest must be pointer to struct")
	n := 1
	assert.ErrorContains(t, decodeRecord(Record{}, &n), "pointer to int")
	assert.ErrorContains(t, decodeRecord(Record{"views": "many"}, &a), "scanner: column views")
	assert.ErrorContains(t, decodeRecord(Record{"views": time.Now()}, &a), "cannot assign")
}

func TestDecodeRecords(t *testing.T) {
	records := []Record{{"title": "a"}, {"title": "b"}}

	var values []article
	require.NoError(t, decodeRecords(records, &values))
	require.Len(t, values, 2)
	assert.Equal(t, "b", values[1].Title)

	var ptrs []*article
	require.NoError(t, decodeRecords(records, &ptrs))
	require.Len(t, ptrs, 2)
	assert.Equal(t, "a", ptrs[0].Title)

	var empty []article
	require.NoError(t, decodeRecords(nil, &empty))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.ErrorContains(t, decodeRecords(records, values), "pointer to slice")
	var ints []int
	assert.ErrorContains(t, decodeRecords(records, &ints), "slice element must be struct")
}
