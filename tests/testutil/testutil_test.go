package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/dto"
)

func TestNewMockDB(t *testing.T) {
	db := NewMockDB(t)

	db.Mock.ExpectExec(`UPDATE "item"`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, db.DB.Exec(`UPDATE "item" SET code = 'A'`).Error)
	db.ExpectationsWereMet(t)
}

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t, `CREATE TABLE item (id INTEGER PRIMARY KEY, code TEXT)`)

	require.NoError(t, db.DB.Exec(`INSERT INTO item (code) VALUES ('A'), ('B')`).Error)
	assert.Equal(t, int64(2), CountRows(t, db, "item", ""))
	assert.Equal(t, int64(1), CountRows(t, db, "item", "code = ?", "B"))
}

func TestSaveProcesses(t *testing.T) {
	db := NewSQLiteDB(t)
	SaveProcesses(t, db, integration.IntegrationProcess{
		ProcessName:   "ITEM",
		InterfaceName: "ITEMS",
		TargetTable:   "item",
		XmlIterator:   "//Item",
		Fields:        []integration.IntegrationField{{XmlPath: "Code", DbColumn: "code", IsKey: true}},
	})

	assert.Equal(t, int64(1), CountRows(t, db, "integration_processes", ""))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Hour)

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Minute)
}

func TestHTTPHelpers(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.JSON(http.StatusOK, dto.Success(gin.H{
			"content_type": c.ContentType(),
			"body":         string(body),
		}))
	})
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Failure(dto.ErrCodeNotFound, "missing", ""))
	})

	w := PostXML(t, engine, "/echo", "<A/>")
	got := DataAs[map[string]string](t, w)
	assert.Equal(t, "application/xml", got["content_type"])
	assert.Equal(t, "<A/>", got["body"])

	w = PostJSON(t, engine, "/echo", map[string]int{"n": 1})
	got = DataAs[map[string]string](t, w)
	assert.Equal(t, `{"n":1}`, got["body"])

	msg := AssertErrorResponse(t, Get(t, engine, "/fail"), http.StatusNotFound, dto.ErrCodeNotFound)
	assert.Equal(t, "missing", msg)
}
