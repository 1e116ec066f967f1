package remote

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var incidentColumns = []string{"id", "title", "description", "category", "image_url", "location_lat", "location_lng", "created_at", "user_id"}

func newAdapterWithMock(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAdapter(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+incidents\s*\(title,\s*description,\s*category,\s*image_url,\s*location_lat,\s*location_lng,\s*user_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id,\s*created_at\s*$`

func TestCreate_WithLocationAndImage(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQ).
		WithArgs("Pothole", "Deep pothole on Main St", "infrastructure", "https://img/x.jpg", 52.5, 13.4, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("inc-1", created))

	in := &models.Incident{
		Title: "Pothole", Description: "Deep pothole on Main St", Category: "infrastructure",
		ImageURL: "https://img/x.jpg", Location: &models.Location{Latitude: 52.5, Longitude: 13.4}, UserID: "u1",
	}
	got, err := a.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "inc-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "u1", got.UserID)
	assert.Empty(t, in.ID, "input must not be mutated")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_OptionalFieldsAreNull(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("t", "d", "noise", nil, nil, nil, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("inc-2", time.Now()))

	_, err := a.Create(context.Background(), &models.Incident{Title: "t", Description: "d", Category: "noise", UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError_IsUnavailable(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("connection reset"))

	_, err := a.Create(context.Background(), &models.Incident{Title: "t", Description: "d", Category: "noise", UserID: "u1"})
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestList_OrdersServerSideAndMapsNulls(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)
	t1 := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	q := `(?s)^SELECT\s+id,\s*title,.*\s+FROM\s+incidents\s+ORDER\s+BY\s+created_at\s+DESC$`
	rows := sqlmock.NewRows(incidentColumns).
		AddRow("b", "B", "dB", "noise", "https://img/b.jpg", 1.5, 2.5, t1, "u2").
		AddRow("a", "A", "dA", "noise", nil, nil, nil, t0, "u1")
	mock.ExpectQuery(q).WillReturnRows(rows)

	list, err := a.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "https://img/b.jpg", list[0].ImageURL)
	require.NotNil(t, list[0].Location)
	assert.Equal(t, 1.5, list[0].Location.Latitude)

	assert.Equal(t, "a", list[1].ID)
	assert.Empty(t, list[1].ImageURL)
	assert.Nil(t, list[1].Location)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_PartialLocationIsDropped(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)

	rows := sqlmock.NewRows(incidentColumns).
		AddRow("a", "A", "dA", "noise", nil, 1.5, nil, time.Now(), "u1")
	mock.ExpectQuery(`FROM\s+incidents`).WillReturnRows(rows)

	list, err := a.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Location)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)
	mock.ExpectQuery(`FROM\s+incidents`).WillReturnRows(sqlmock.NewRows(incidentColumns))

	list, err := a.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListByCategory_AddsPredicate(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)

	q := `(?s)FROM\s+incidents\s+WHERE\s+category\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`
	mock.ExpectQuery(q).WithArgs("accident").
		WillReturnRows(sqlmock.NewRows(incidentColumns).AddRow("a", "A", "d", "accident", nil, nil, nil, time.Now(), "u1"))

	list, err := a.ListByCategory(context.Background(), "accident")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "accident", list[0].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwner_AddsPredicate(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)

	q := `(?s)FROM\s+incidents\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`
	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(sqlmock.NewRows(incidentColumns))

	_, err := a.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_QueryAndScanErrors(t *testing.T) {
	a, mock, _ := newAdapterWithMock(t)

	mock.ExpectQuery(`FROM\s+incidents`).WillReturnError(errors.New("db down"))
	_, err := a.List(context.Background())
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)

	mock.ExpectQuery(`FROM\s+incidents`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("only-id"))
	_, err = a.List(context.Background())
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)

	mock.ExpectQuery(`FROM\s+incidents`).
		WillReturnRows(sqlmock.NewRows(incidentColumns).
			AddRow("a", "A", "d", "noise", nil, nil, nil, time.Now(), "u1").
			RowError(0, errors.New("row broke")))
	_, err = a.List(context.Background())
	assert.ErrorIs(t, err, common.ErrBackendUnavailable)
}
