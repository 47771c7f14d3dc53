package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueEmails(t *testing.T) {
	got := UniqueEmails([]string{"a@x.com", " A@x.com ", "B@x.com", "", "b@x.com"})

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got)
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("someone@example.com"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("Someone <someone@example.com>"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2026-03-05T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("05/03/2026")
	assert.Error(t, err)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/tasks?page=3&limit=10", nil)
	params := GetPaginationParams(c)
	assert.Equal(t, PaginationParams{Page: 3, Limit: 10, Offset: 20}, params)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/tasks?page=0&limit=1000", nil)
	params = GetPaginationParams(c)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 100, params.Limit)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/users?pageSize=5", nil)
	params = GetPaginationParams(c)
	assert.Equal(t, PaginationParams{Page: 1, Limit: 5, Offset: 0}, params)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/users", nil)
	assert.Equal(t, 20, GetPaginationParams(c).Limit)
}

func TestPaginationResponse(t *testing.T) {
	params := NewPaginationParams(2, 10)

	assert.Equal(t, PaginationResponse{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, params.Response(21))
	assert.Equal(t, 0, params.Response(0).TotalPages)
}
