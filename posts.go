package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"xplore/models"
	"xplore/storage"
)

func (a *App) createPost(c *gin.Context) {
	var input struct {
		Text string `form:"text" json:"text"`
	}
	if err := c.ShouldBind(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var imgURL string
	if fh, err := c.FormFile("postImg"); err == nil {
		url, err := storage.UploadFileHeader(c.Request.Context(), a.media, fh)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to upload post image")
			return
		}
		imgURL = url
	}

	if strings.TrimSpace(input.Text) == "" && imgURL == "" {
		respondError(c, http.StatusBadRequest, "Text or Image : At least one is required")
		return
	}

	post := models.Post{
		AuthorID: currentUserID(c),
		Text:     input.Text,
		Img:      imgURL,
	}
	if err := a.db.Create(&post).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{"post": post}, "New post created successfully")
}

func (a *App) deletePost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post id")
		return
	}

	var post models.Post
	if err := a.db.First(&post, uint(postID)).Error; err != nil {
		respondError(c, http.StatusNotFound, "No post found")
		return
	}
	if post.AuthorID != currentUserID(c) {
		respondError(c, http.StatusForbidden, "You are not authorized to delete the post")
		return
	}

	// Remote media removal is best-effort: a dangling object is better
	// than a post that cannot be deleted.
	if post.Img != "" {
		if err := a.media.Remove(c.Request.Context(), post.Img); err != nil {
			slog.Warn("post image not removed", "post", post.ID, "img", post.Img, "error", err)
		}
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, gin.H{}, "Post deleted successfully")
}

// likeUnlikePost toggles the requester's like on a post. The Like row
// is the only authoritative state, so the toggle is a single-table
// transaction; the Redis like set and the post's counter column are
// derived from it afterwards.
func (a *App) likeUnlikePost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("postId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post id")
		return
	}
	userID := currentUserID(c)

	var post models.Post
	if err := a.db.First(&post, uint(postID)).Error; err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	liked := false
	err = a.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("user_id = ? AND post_id = ?", userID, post.ID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			if err := tx.Create(&models.Like{UserID: userID, PostID: post.ID}).Error; err != nil {
				return err
			}
		default:
			return err
		}
		if a.rdb == nil {
			// No mirror to reconcile from, keep the counter current here.
			var count int64
			if err := tx.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
				return err
			}
			return tx.Model(&post).Update("like_count", count).Error
		}
		return nil
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.mirrorLike(c.Request.Context(), post.ID, userID, liked)

	action := "unliked"
	if liked {
		action = "liked"
		a.notifier.Notify(models.Notification{
			FromID: userID,
			ToID:   post.AuthorID,
			Type:   models.NotificationLike,
		})
	}

	respond(c, http.StatusOK, gin.H{}, action+" post")
}

func (a *App) commentOnPost(c *gin.Context) {
	var input struct {
		Text string `form:"text" json:"text"`
	}
	if err := c.ShouldBind(&input); err != nil || strings.TrimSpace(input.Text) == "" {
		respondError(c, http.StatusBadRequest, "There should be some text")
		return
	}

	postID, err := strconv.ParseUint(c.Param("postId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid post id")
		return
	}

	var post models.Post
	if err := a.db.First(&post, uint(postID)).Error; err != nil {
		respondError(c, http.StatusNotFound, "Post not found")
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: currentUserID(c),
		Text:     input.Text,
	}
	if err := a.db.Create(&comment).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.notifier.Notify(models.Notification{
		FromID: comment.AuthorID,
		ToID:   post.AuthorID,
		Type:   models.NotificationComment,
		Text:   comment.Text,
	})

	var comments []models.Comment
	if err := a.db.Where("post_id = ?", post.ID).Order("id").Find(&comments).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respond(c, http.StatusOK, gin.H{"comments": comments}, "Comment added")
}
