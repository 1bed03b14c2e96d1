package http

import (
	"net/http"
	"testing"

	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestBookmarksFlow(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")
	recipe := s.createRecipe(t, alice.Token, "Curry")

	s.api().
		Post("/api/bookmarks").
		Header("Authorization", "Bearer "+bob.Token).
		JSON(`{"recipe_id":"` + recipe.ID + `"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.user_id", bob.UserID)).
		End()

	s.api().
		Post("/api/bookmarks").
		Header("Authorization", "Bearer "+bob.Token).
		JSON(`{"recipe_id":"` + recipe.ID + `"}`).
		Expect(t).
		Status(http.StatusConflict).
		End()

	s.api().
		Get("/api/bookmarks").
		Header("Authorization", "Bearer "+bob.Token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].title", "Curry")).
		End()

	s.api().
		Get("/api/bookmarks/user/"+bob.UserID).
		Header("Authorization", "Bearer "+bob.Token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		End()

	s.api().
		Get("/api/bookmarks/user/"+bob.UserID).
		Header("Authorization", "Bearer "+alice.Token).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	s.api().
		Delete("/api/bookmarks").
		Header("Authorization", "Bearer "+alice.Token).
		JSON(`{"recipe_id":"` + recipe.ID + `"}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()

	s.api().
		Delete("/api/bookmarks").
		Header("Authorization", "Bearer "+bob.Token).
		JSON(`{"recipe_id":"` + recipe.ID + `"}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	s.api().
		Get("/api/bookmarks").
		Header("Authorization", "Bearer "+bob.Token).
		Expect(t).
		Status(http.StatusOK).
		Body(`[]`).
		End()

	s.api().
		Get("/api/bookmarks").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}
