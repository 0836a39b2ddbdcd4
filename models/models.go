package models

import (
	"time"
)

// User is an account. Password and RefreshToken never serialize; handlers
// additionally strip them from joined author details via PublicUser.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"not null" json:"fullName"`
	Username     string    `gorm:"unique;not null" json:"username"`
	Email        string    `gorm:"unique;not null" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	ProfileImg   string    `json:"profileImg"`
	CoverImg     string    `json:"coverImg"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AuthorID uint   `gorm:"not null;index" json:"author"`
	Text     string `gorm:"type:text" json:"text"`
	Img      string `json:"img"`
	// Derived counter, reconciled from the Redis like sets. Like rows
	// are the authoritative record.
	LikeCount uint      `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// Comment belongs to a post; append order is id order. No edit or delete.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	AuthorID  uint      `gorm:"not null" json:"author"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like is the single authoritative record of "user likes post". The
// per-post likes array and the per-user liked-posts list are both
// derived from it, so a toggle is one row in one table.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followerId"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FromID    uint      `gorm:"not null" json:"from"`
	ToID      uint      `gorm:"not null;index" json:"to"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is the profile shape embedded in posts, comments and
// notifications: a User minus credentials and session state.
type PublicUser struct {
	ID         uint      `json:"id"`
	FullName   string    `json:"fullName"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	ProfileImg string    `json:"profileImg"`
	CoverImg   string    `json:"coverImg"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Username:   u.Username,
		Email:      u.Email,
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
		CreatedAt:  u.CreatedAt,
	}
}
