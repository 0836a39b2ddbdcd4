package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xplore/models"
)

type profilePayload struct {
	User      models.PublicUser `json:"user"`
	Followers int64             `json:"followers"`
	Following int64             `json:"following"`
}

func getProfile(t *testing.T, r *gin.Engine, cookie *http.Cookie, username string) profilePayload {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/api/v1/users/profile/"+username, nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var payload profilePayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload
}

func TestProfile(t *testing.T) {
	_, r, _ := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")

	t.Run("unknown username", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/users/profile/nobody", nil, ana)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	payload := getProfile(t, r, ana, "ana")
	assert.Equal(t, "ana", payload.User.Username)
	assert.Zero(t, payload.Followers)
	assert.Zero(t, payload.Following)
}

func TestFollowUnfollow(t *testing.T) {
	app, r, _ := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")
	signupUser(t, r, "bob")
	bobID := userID(t, app, "bob")

	t.Run("self follow", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", userID(t, app, "ana")), nil, ana)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown target", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/users/follow/9999", nil, ana)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", bobID), nil, ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "followed bob", decodeEnvelope(t, w).Message)

	payload := getProfile(t, r, ana, "bob")
	assert.EqualValues(t, 1, payload.Followers)
	payload = getProfile(t, r, ana, "ana")
	assert.EqualValues(t, 1, payload.Following)

	// Second call toggles it back off.
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/users/follow/%d", bobID), nil, ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unfollowed bob", decodeEnvelope(t, w).Message)

	payload = getProfile(t, r, ana, "bob")
	assert.Zero(t, payload.Followers)
}

func TestSuggestedUsers(t *testing.T) {
	app, r, _ := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")
	for _, name := range []string{"bob", "carol", "dave"} {
		signupUser(t, r, name)
	}
	follow(t, r, ana, userID(t, app, "bob"))

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/suggestions", nil, ana)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Users []models.PublicUser `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))

	require.Len(t, data.Users, 2)
	for _, u := range data.Users {
		assert.NotEqual(t, "ana", u.Username, "viewer must not be suggested")
		assert.NotEqual(t, "bob", u.Username, "already-followed user must not be suggested")
	}
	assert.NotContains(t, w.Body.String(), `"password"`)
}

func TestUpdateUser(t *testing.T) {
	app, r, store := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")
	signupUser(t, r, "bob")

	t.Run("rename and profile fields", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/users/update", gin.H{
			"fullName": "Ana Maria",
			"username": "anamaria",
		}, ana)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var user models.User
		require.NoError(t, app.db.Where("username = ?", "anamaria").First(&user).Error)
		assert.Equal(t, "Ana Maria", user.FullName)
	})

	t.Run("username conflict", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/users/update", gin.H{"username": "bob"}, ana)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short new password", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/users/update", gin.H{"password": "123"}, ana)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("avatar replaced and old object removed", func(t *testing.T) {
		w := doMultipart(t, r, "/api/v1/users/update", nil,
			map[string][]byte{"profileImg": []byte("first")}, ana)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Len(t, store.uploads, 1)
		assert.Empty(t, store.removed)

		w = doMultipart(t, r, "/api/v1/users/update", nil,
			map[string][]byte{"profileImg": []byte("second")}, ana)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, store.uploads, 2)
		assert.Equal(t, []string{store.uploads[0]}, store.removed)
	})
}
