package main

import (
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"xplore/models"
	"xplore/storage"
)

func (a *App) getProfile(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	var followers, following int64
	if err := a.db.Model(&models.Follow{}).Where("followed_id = ?", user.ID).Count(&followers).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := a.db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&following).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"user":      user.Public(),
		"followers": followers,
		"following": following,
	}, "Profile retrieved successfully")
}

// followUnfollow toggles the requester's follow of the target. Like the
// like toggle, the Follow row is the single authoritative side; the
// followers view is derived from the same rows.
func (a *App) followUnfollow(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	userID := currentUserID(c)
	if uint(targetID) == userID {
		respondError(c, http.StatusBadRequest, "You cannot follow yourself")
		return
	}

	var target models.User
	if err := a.db.First(&target, uint(targetID)).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	followed := false
	err = a.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Follow
		err := tx.Where("follower_id = ? AND followed_id = ?", userID, target.ID).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			followed = true
			return tx.Create(&models.Follow{FollowerID: userID, FollowedID: target.ID}).Error
		default:
			return err
		}
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	action := "unfollowed"
	if followed {
		action = "followed"
		a.notifier.Notify(models.Notification{
			FromID: userID,
			ToID:   target.ID,
			Type:   models.NotificationFollow,
		})
	}

	respond(c, http.StatusOK, gin.H{}, action+" "+target.Username)
}

const suggestionCount = 5

func (a *App) getSuggestedUsers(c *gin.Context) {
	userID := currentUserID(c)

	following, err := a.followedIDs(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	exclude := append(following, userID)

	var candidates []models.User
	if err := a.db.Where("id NOT IN ?", exclude).Limit(20).Find(&candidates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > suggestionCount {
		candidates = candidates[:suggestionCount]
	}

	suggestions := make([]models.PublicUser, 0, len(candidates))
	for i := range candidates {
		suggestions = append(suggestions, candidates[i].Public())
	}

	respond(c, http.StatusOK, gin.H{"users": suggestions}, "Suggested users retrieved successfully")
}

func (a *App) updateUser(c *gin.Context) {
	user, err := a.currentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "User is not authorized")
		return
	}

	var input struct {
		FullName string `form:"fullName" json:"fullName"`
		Username string `form:"username" json:"username"`
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password"`
	}
	if err := c.ShouldBind(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.Username != "" && input.Username != user.Username {
		var taken int64
		a.db.Model(&models.User{}).Where("username = ?", input.Username).Count(&taken)
		if taken > 0 {
			respondError(c, http.StatusConflict, "Username already taken")
			return
		}
		user.Username = input.Username
	}
	if input.Email != "" && input.Email != user.Email {
		if !emailRegex.MatchString(input.Email) {
			respondError(c, http.StatusBadRequest, "Invalid Email format")
			return
		}
		var taken int64
		a.db.Model(&models.User{}).Where("email = ?", input.Email).Count(&taken)
		if taken > 0 {
			respondError(c, http.StatusConflict, "Email already taken")
			return
		}
		user.Email = input.Email
	}
	if strings.TrimSpace(input.FullName) != "" {
		user.FullName = input.FullName
	}
	if input.Password != "" {
		if len(input.Password) < 6 {
			respondError(c, http.StatusBadRequest, "Password length must be six or greater")
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.Password = string(hashed)
	}

	if fh, err := c.FormFile("profileImg"); err == nil {
		url, err := storage.UploadFileHeader(c.Request.Context(), a.media, fh)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to upload profile image")
			return
		}
		if user.ProfileImg != "" {
			if err := a.media.Remove(c.Request.Context(), user.ProfileImg); err != nil {
				slog.Warn("old profile image not removed", "user", user.ID, "error", err)
			}
		}
		user.ProfileImg = url
	}
	if fh, err := c.FormFile("coverImg"); err == nil {
		url, err := storage.UploadFileHeader(c.Request.Context(), a.media, fh)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to upload cover image")
			return
		}
		if user.CoverImg != "" {
			if err := a.media.Remove(c.Request.Context(), user.CoverImg); err != nil {
				slog.Warn("old cover image not removed", "user", user.ID, "error", err)
			}
		}
		user.CoverImg = url
	}

	if err := a.db.Save(user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, user, "User updated successfully")
}
