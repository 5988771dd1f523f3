package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileUpdate_IsEmpty(t *testing.T) {
	bio := "Reads on trains."
	author := false

	assert.True(t, ProfileUpdate{}.IsEmpty())
	assert.False(t, ProfileUpdate{Bio: &bio}.IsEmpty())
	assert.False(t, ProfileUpdate{IsAuthor: &author}.IsEmpty(), "false is still a change")
}

func TestProfileUpdate_Apply(t *testing.T) {
	name := "Ann Okafor"
	site := "https://ann.example.com"
	author := true

	u := &User{Name: "Ann", Bio: "kept", Born: "1990-01-01"}
	ProfileUpdate{Name: &name, Website: &site, IsAuthor: &author}.Apply(u)

	assert.Equal(t, "Ann Okafor", u.Name)
	assert.Equal(t, "https://ann.example.com", u.Website)
	assert.True(t, u.IsAuthor)
	assert.Equal(t, "kept", u.Bio, "unset fields are untouched")
	assert.Equal(t, "1990-01-01", u.Born)
	assert.Empty(t, u.SocialMedia)
}

func TestProfileUpdate_ApplyCanClear(t *testing.T) {
	empty := ""
	u := &User{Bio: "old bio", SocialMedia: "https://social.example.com/ann"}

	ProfileUpdate{Bio: &empty, SocialMedia: &empty}.Apply(u)

	assert.Empty(t, u.Bio)
	assert.Empty(t, u.SocialMedia)
}
