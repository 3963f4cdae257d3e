package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cheeseshop/internal/config"
	"cheeseshop/internal/storage"
)

func openSessionDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: "file:" + t.Name() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close(db) })
	return db
}

func inUse(t *testing.T, db *gorm.DB) int {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	return sqlDB.Stats().InUse
}

func TestDBSessionUnavailable(t *testing.T) {
	db := openSessionDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	called := false
	r := gin.New()
	r.GET("/x", DBSession(db), func(c *gin.Context) { called = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, 503, w.Code)
	require.JSONEq(t, `{"detail":"Database unavailable"}`, w.Body.String())
	require.False(t, called)
}

func TestDBSessionReleasedOnEveryExit(t *testing.T) {
	db := openSessionDB(t)
	r := gin.New()
	r.Use(gin.Recovery(), DBSession(db))
	r.GET("/ok", func(c *gin.Context) {
		require.NotNil(t, Session(c))
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/abort", func(c *gin.Context) {
		c.AbortWithStatusJSON(422, gin.H{"detail": "bad"})
	})
	r.GET("/panic", func(c *gin.Context) {
		require.NoError(t, Session(c).Exec("SELECT 1").Error)
		panic("boom")
	})

	cases := []struct {
		path string
		code int
	}{
		{"/ok", 200},
		{"/abort", 422},
		{"/panic", 500},
		// 连接池只有一条连接，未归还时下一次签出会阻塞
		{"/ok", 200},
	}
	for _, tc := range cases {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil).WithContext(ctx))
		cancel()
		require.Equal(t, tc.code, w.Code, tc.path)
		require.Zero(t, inUse(t, db), tc.path)
	}
}

func TestSessionWithoutMiddleware(t *testing.T) {
	r := gin.New()
	var got *gorm.DB
	r.GET("/x", func(c *gin.Context) { got = Session(c) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Nil(t, got)
}
