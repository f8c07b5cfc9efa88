package controllers

import (
	"testing"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
)

func TestAssertionFromGothUser(t *testing.T) {
	u := goth.User{
		Provider:  "google",
		UserID:    "g1",
		Email:     "a@x.com",
		Name:      "Alice",
		AvatarURL: "https://avatars.example/alice.png",
	}

	a := assertionFromGothUser(u)
	assert.Equal(t, "google", a.Provider)
	assert.Equal(t, "g1", a.SubjectID)
	assert.Equal(t, "a@x.com", a.Email)
	assert.Equal(t, "Alice", a.Name)
	assert.Equal(t, "google:g1", a.Ref())
}

func TestAssertionNameFallsBackToNickname(t *testing.T) {
	u := goth.User{
		Provider: "github",
		UserID:   "77",
		Email:    "b@x.com",
		NickName: "bobby",
	}

	a := assertionFromGothUser(u)
	assert.Equal(t, "bobby", a.Name)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("", "a", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
