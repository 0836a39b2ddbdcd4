package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"xplore/models"
)

const likeKeyPrefix = "posts:likes:"

// mirrorLike reflects a like toggle into the per-post Redis set. The
// mirror is best-effort: Like rows stay authoritative and the periodic
// reconcile repairs any drift.
func (a *App) mirrorLike(ctx context.Context, postID, userID uint, liked bool) {
	if a.rdb == nil {
		return
	}
	key := fmt.Sprintf("%s%d", likeKeyPrefix, postID)

	var err error
	if liked {
		err = a.rdb.SAdd(ctx, key, userID).Err()
	} else {
		err = a.rdb.SRem(ctx, key, userID).Err()
	}
	if err != nil {
		slog.Warn("like mirror not updated", "key", key, "user", userID, "error", err)
	}
}

// SyncLikeCounts copies the cardinality of every mirrored like set into
// the posts' counter column.
func (a *App) SyncLikeCounts(ctx context.Context) {
	keys, err := a.rdb.Keys(ctx, likeKeyPrefix+"*").Result()
	if err != nil {
		slog.Error("failed to list like sets", "pattern", likeKeyPrefix+"*", "error", err)
		return
	}

	for _, key := range keys {
		postID := strings.TrimPrefix(key, likeKeyPrefix)

		count, err := a.rdb.SCard(ctx, key).Result()
		if err != nil {
			continue
		}
		a.db.Model(&models.Post{}).Where("id = ?", postID).Update("like_count", count)
	}

	slog.Info("like counts reconciled", "sets", len(keys))
}

// StartLikeSync reconciles on a fixed tick until the context ends.
func (a *App) StartLikeSync(ctx context.Context, tick time.Duration) {
	if a.rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.SyncLikeCounts(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}
