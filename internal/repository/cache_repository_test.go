package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "proposal:", nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "p-1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "p-1", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "p-1"))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "proposal:p-1", repo.key("p-1"))
}
