package platforms

import (
	"testing"

	"github.com/staysocial/staysocial-backend/internal/posts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCoversPostPlatforms(t *testing.T) {
	svc := NewService()

	var ids []string
	for _, p := range svc.Schedulable() {
		ids = append(ids, p.ID)
	}
	for _, p := range posts.Platforms {
		assert.Contains(t, ids, string(p))
	}
	assert.Len(t, ids, len(posts.Platforms))
}

func TestGet(t *testing.T) {
	svc := NewService()

	twitter, ok := svc.Get(" Twitter ")
	require.True(t, ok)
	assert.Equal(t, 280, twitter.CharacterLimit)
	assert.False(t, twitter.Connected)

	linkedin, ok := svc.Get("linkedin")
	require.True(t, ok)
	assert.True(t, linkedin.StripsEmoji)

	naver, ok := svc.Get("naver")
	require.True(t, ok)
	assert.False(t, naver.Schedulable)

	_, ok = svc.Get("myspace")
	assert.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	svc := NewService()
	list := svc.List()
	list[0].Label = "changed"
	assert.Equal(t, "Instagram", svc.List()[0].Label)
}
