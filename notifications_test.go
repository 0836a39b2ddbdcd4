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

// The notifier worker is not started in tests; Flush drains the queue
// synchronously instead.
func listNotifications(t *testing.T, app *App, r *gin.Engine, cookie *http.Cookie) []NotificationView {
	t.Helper()
	app.notifier.Flush()

	w := doJSON(t, r, http.MethodGet, "/api/v1/notifications", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Notifications []NotificationView `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Notifications
}

func TestLikeNotifiesOnlyOnLike(t *testing.T) {
	app, r, _ := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")
	bob := signupAndLogin(t, r, "bob")

	createPost(t, r, bob, "noticed")
	var post models.Post
	require.NoError(t, app.db.First(&post).Error)
	likeURL := fmt.Sprintf("/api/v1/posts/like/%d", post.ID)

	w := doJSON(t, r, http.MethodPost, likeURL, nil, ana)
	require.Equal(t, http.StatusOK, w.Code)

	notifs := listNotifications(t, app, r, bob)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationLike, notifs[0].Type)
	assert.Equal(t, userID(t, app, "ana"), notifs[0].From)
	require.NotNil(t, notifs[0].FromDetails)
	assert.Equal(t, "ana", notifs[0].FromDetails.Username)

	// The undo direction stays silent.
	w = doJSON(t, r, http.MethodPost, likeURL, nil, ana)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, listNotifications(t, app, r, bob), 1)
}

func TestCommentNotificationCarriesText(t *testing.T) {
	app, r, _ := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")
	bob := signupAndLogin(t, r, "bob")

	createPost(t, r, bob, "debate")
	var post models.Post
	require.NoError(t, app.db.First(&post).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/posts/comment/%d", post.ID), gin.H{"text": "well said"}, ana)
	require.Equal(t, http.StatusOK, w.Code)

	notifs := listNotifications(t, app, r, bob)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationComment, notifs[0].Type)
	assert.Equal(t, "well said", notifs[0].Text)
}

func TestFollowNotifiesOnFirstFollowOnly(t *testing.T) {
	app, r, _ := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")
	bob := signupAndLogin(t, r, "bob")
	bobID := userID(t, app, "bob")

	follow(t, r, ana, bobID) // follow
	follow(t, r, ana, bobID) // unfollow
	follow(t, r, ana, bobID) // follow again

	notifs := listNotifications(t, app, r, bob)
	require.Len(t, notifs, 2)
	for _, n := range notifs {
		assert.Equal(t, models.NotificationFollow, n.Type)
	}
}

func TestNotificationsNewestFirstAndScoped(t *testing.T) {
	app, r, _ := newTestApp(t)
	ana := signupAndLogin(t, r, "ana")
	bob := signupAndLogin(t, r, "bob")
	carol := signupAndLogin(t, r, "carol")

	createPost(t, r, bob, "popular")
	var post models.Post
	require.NoError(t, app.db.First(&post).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/posts/like/%d", post.ID), nil, ana)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/posts/comment/%d", post.ID), gin.H{"text": "me too"}, carol)
	require.Equal(t, http.StatusOK, w.Code)

	notifs := listNotifications(t, app, r, bob)
	require.Len(t, notifs, 2)
	assert.Equal(t, models.NotificationComment, notifs[0].Type, "newest notification first")
	assert.Equal(t, models.NotificationLike, notifs[1].Type)

	// Ana triggered events but received none.
	assert.Empty(t, listNotifications(t, app, r, ana))
}
