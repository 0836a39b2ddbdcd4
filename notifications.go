package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"xplore/models"
)

// Notifier writes notifications off the request path through a buffered
// channel: social-graph mutations must not fail because a notification
// could not be stored. A full queue drops the notification with a log
// line.
type Notifier struct {
	db *gorm.DB
	ch chan models.Notification
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{
		db: db,
		ch: make(chan models.Notification, 1000),
	}
}

// Start launches the worker draining the queue into the store.
func (n *Notifier) Start() {
	go func() {
		for notif := range n.ch {
			n.persist(notif)
		}
	}()
}

// Notify enqueues a notification without blocking the caller.
func (n *Notifier) Notify(notif models.Notification) {
	select {
	case n.ch <- notif:
	default:
		slog.Warn("notification queue full, dropping",
			"type", notif.Type,
			"from", notif.FromID,
			"to", notif.ToID,
		)
	}
}

// Flush processes everything currently queued on the caller's
// goroutine. Only meaningful when the worker is not running.
func (n *Notifier) Flush() {
	for {
		select {
		case notif := <-n.ch:
			n.persist(notif)
		default:
			return
		}
	}
}

func (n *Notifier) persist(notif models.Notification) {
	if err := n.db.Create(&notif).Error; err != nil {
		slog.Warn("notification not stored",
			"type", notif.Type,
			"from", notif.FromID,
			"to", notif.ToID,
			"error", err,
		)
	}
}

// NotificationView is one notification with its source user resolved.
type NotificationView struct {
	ID          uint               `json:"id"`
	From        uint               `json:"from"`
	FromDetails *models.PublicUser `json:"fromDetails"`
	Type        string             `json:"type"`
	Text        string             `json:"text"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func (a *App) getNotifications(c *gin.Context) {
	userID := currentUserID(c)

	var notifs []models.Notification
	err := a.db.Where("to_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifs).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	fromIDs := make([]uint, 0, len(notifs))
	for _, nf := range notifs {
		fromIDs = append(fromIDs, nf.FromID)
	}
	userByID := make(map[uint]models.PublicUser)
	if len(fromIDs) > 0 {
		var users []models.User
		if err := a.db.Where("id IN ?", fromIDs).Find(&users).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		for i := range users {
			userByID[users[i].ID] = users[i].Public()
		}
	}

	views := make([]NotificationView, 0, len(notifs))
	for _, nf := range notifs {
		view := NotificationView{
			ID:        nf.ID,
			From:      nf.FromID,
			Type:      nf.Type,
			Text:      nf.Text,
			CreatedAt: nf.CreatedAt,
		}
		if details, ok := userByID[nf.FromID]; ok {
			view.FromDetails = &details
		}
		views = append(views, view)
	}

	respond(c, http.StatusOK, gin.H{"notifications": views}, "Notifications retrieved successfully")
}
