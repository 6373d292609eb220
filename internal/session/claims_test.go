package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saadjs/cycle-cli/internal/apitest"
)

func TestInspect(t *testing.T) {
	t.Parallel()
	srv := apitest.New(t)

	live := Inspect(srv.IssueToken("ada"))
	assert.Equal(t, "ada", live.Subject)
	assert.False(t, live.Expired(time.Now()))
	assert.True(t, live.Expired(time.Now().Add(2*time.Hour)))

	expired := Inspect(srv.ExpiredToken("ada"))
	assert.True(t, expired.Expired(time.Now()))

	opaque := Inspect("not-a-jwt")
	assert.Equal(t, Claims{}, opaque)
	assert.False(t, opaque.Expired(time.Now()))
}
