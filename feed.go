package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"xplore/models"
)

// PostView is one feed entry: the post with its author resolved, the
// ids of users who liked it, and every comment carrying its own
// author's public details.
type PostView struct {
	ID               uint              `json:"id"`
	Text             string            `json:"text"`
	Img              string            `json:"img"`
	Author           uint              `json:"author"`
	AuthorDetails    models.PublicUser `json:"authorDetails"`
	Likes            []uint            `json:"likes"`
	LikeCount        uint              `json:"likeCount"`
	Comments         []CommentView     `json:"comments"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	IsFollowedAuthor bool              `json:"isFollowedAuthor"`
}

type CommentView struct {
	ID            uint               `json:"id"`
	Text          string             `json:"text"`
	Author        uint               `json:"author"`
	AuthorDetails *models.PublicUser `json:"authorDetails"`
	CreatedAt     time.Time          `json:"createdAt"`
}

const defaultPageLimit = 20

func parsePaging(c *gin.Context) (page, limit int, err error) {
	page, limit = 1, defaultPageLimit
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
	}
	return page, limit, nil
}

// followedIDs returns the set of users the given user follows.
func (a *App) followedIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := a.db.Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followed_id", &ids).Error
	return ids, err
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// assemblePosts resolves author and per-comment author details for a
// page of posts. Comments are stored as child rows, so the listing is
// regrouped in two stages: flatten every post into its comment rows,
// resolve each row's author in one batch, then regroup per post in the
// order the posts came in. A post without comments keeps its single
// entry with an empty comments array.
func (a *App) assemblePosts(posts []models.Post, followed map[uint]bool) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]uint, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		authorIDs = append(authorIDs, p.AuthorID)
	}

	var comments []models.Comment
	if err := a.db.Where("post_id IN ?", postIDs).Order("post_id, id").Find(&comments).Error; err != nil {
		return nil, err
	}
	commentsByPost := make(map[uint][]models.Comment)
	for _, cm := range comments {
		commentsByPost[cm.PostID] = append(commentsByPost[cm.PostID], cm)
		authorIDs = append(authorIDs, cm.AuthorID)
	}

	var likes []models.Like
	if err := a.db.Where("post_id IN ?", postIDs).Order("id").Find(&likes).Error; err != nil {
		return nil, err
	}
	likesByPost := make(map[uint][]uint)
	for _, l := range likes {
		likesByPost[l.PostID] = append(likesByPost[l.PostID], l.UserID)
	}

	var users []models.User
	if err := a.db.Where("id IN ?", authorIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	userByID := make(map[uint]models.PublicUser, len(users))
	for i := range users {
		userByID[users[i].ID] = users[i].Public()
	}

	for _, p := range posts {
		view := PostView{
			ID:               p.ID,
			Text:             p.Text,
			Img:              p.Img,
			Author:           p.AuthorID,
			AuthorDetails:    userByID[p.AuthorID],
			Likes:            likesByPost[p.ID],
			LikeCount:        p.LikeCount,
			Comments:         make([]CommentView, 0, len(commentsByPost[p.ID])),
			CreatedAt:        p.CreatedAt,
			UpdatedAt:        p.UpdatedAt,
			IsFollowedAuthor: followed[p.AuthorID],
		}
		if view.Likes == nil {
			view.Likes = []uint{}
		}
		for _, cm := range commentsByPost[p.ID] {
			cv := CommentView{
				ID:        cm.ID,
				Text:      cm.Text,
				Author:    cm.AuthorID,
				CreatedAt: cm.CreatedAt,
			}
			if details, ok := userByID[cm.AuthorID]; ok {
				cv.AuthorDetails = &details
			}
			view.Comments = append(view.Comments, cv)
		}
		views = append(views, view)
	}
	return views, nil
}

func totalPages(totalPosts int64, limit int) int64 {
	return (totalPosts + int64(limit) - 1) / int64(limit)
}

// getAllPosts serves the global feed: posts from followed authors
// first, recency breaking ties, then skip/limit pagination.
func (a *App) getAllPosts(c *gin.Context) {
	page, limit, err := parsePaging(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	following, err := a.followedIDs(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	followed := make(map[uint]bool, len(following))
	for _, id := range following {
		followed[id] = true
	}

	q := a.db.Model(&models.Post{})
	if len(following) > 0 {
		// The ids come from our own follows table, never from the
		// request, so inlining them is safe.
		q = q.Order(fmt.Sprintf("(author_id IN (%s)) DESC", joinIDs(following)))
	}
	var posts []models.Post
	err = q.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var total int64
	if err := a.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	views, err := a.assemblePosts(posts, followed)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := "Posts retrieved successfully"
	if len(views) == 0 {
		message = "No post to be retrieved"
	}
	respond(c, http.StatusOK, gin.H{
		"posts":      views,
		"totalPosts": total,
		"totalPages": totalPages(total, limit),
	}, message)
}

// getFollowingPosts serves only followed authors' posts, newest first.
// totalPosts deliberately stays the global post count: the original
// behavior is kept even though it disagrees with the filtered listing.
func (a *App) getFollowingPosts(c *gin.Context) {
	page, limit, err := parsePaging(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	following, err := a.followedIDs(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var posts []models.Post
	if len(following) > 0 {
		err = a.db.Where("author_id IN ?", following).
			Order("created_at DESC, id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&posts).Error
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	var total int64
	if err := a.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	views, err := a.assemblePosts(posts, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := "Posts retrieved successfully"
	if len(views) == 0 {
		message = "No post to be retrieved"
	}
	respond(c, http.StatusOK, gin.H{
		"posts":      views,
		"totalPosts": total,
		"totalPages": totalPages(total, limit),
	}, message)
}

func (a *App) getUserPosts(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	var posts []models.Post
	err := a.db.Where("author_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	views, err := a.assemblePosts(posts, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respond(c, http.StatusOK, gin.H{"posts": views}, "User-Posts retrieved successfully")
}

func (a *App) getLikedPosts(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	var user models.User
	if err := a.db.First(&user, uint(userID)).Error; err != nil {
		respondError(c, http.StatusNotFound, "No user found")
		return
	}

	var likedIDs []uint
	err = a.db.Model(&models.Like{}).
		Where("user_id = ?", user.ID).
		Order("id").
		Pluck("post_id", &likedIDs).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var posts []models.Post
	if len(likedIDs) > 0 {
		if err := a.db.Where("id IN ?", likedIDs).Find(&posts).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	views, err := a.assemblePosts(posts, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respond(c, http.StatusOK, gin.H{"likedPosts": views}, "All liked posts retrieved successfully")
}
