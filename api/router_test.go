package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix(t *testing.T) {
	assert.Equal(t, "/admin/api", prefix("/admin/api/"))
	assert.Equal(t, "/admin", prefix("admin"))
	assert.Equal(t, "", prefix("/"))
	assert.Equal(t, "", prefix(""))
}

func TestCORSConfig(t *testing.T) {
	all := corsConfig([]string{"*"})
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)
	assert.NoError(t, all.Validate())

	listed := corsConfig([]string{"http://a.test", "http://b.test"})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, listed.AllowOrigins)
	assert.Contains(t, listed.AllowHeaders, "Accept-Language")
	assert.NoError(t, listed.Validate())
}
