package campus

import (
	"context"
	"fmt"
	"time"

	"github.com/ShinyNito/campushire/core"
)

const (
	notificationsPath   = "/notifications"
	unreadCountPath     = "/notifications/unread-count"
	markAllReadPath     = "/notifications/read-all"
	unreadCountCacheTTL = 30 * time.Second
)

type unreadCount struct {
	Count int `json:"count"`
}

// ListNotifications 站内通知列表
// 命中缓存时立即返回，并在后台刷新。
func (c *Client) ListNotifications(ctx context.Context, query NotificationQuery) (*Page[Notification], error) {
	return c.listNotifications(ctx, query)
}

func (c *Client) loadNotifications(ctx context.Context, query NotificationQuery) (*Page[Notification], error) {
	return Request[*Page[Notification]](c).
		Path(notificationsPath).
		QueryMap(query.params()).
		NoCache().
		Get(ctx)
}

// UnreadCount 未读通知数量（缓存 30 秒）
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	resp, err := Request[unreadCount](c).
		Path(unreadCountPath).
		Cache(core.CacheWith(core.CacheOptions{TTL: unreadCountCacheTTL, Tags: []string{TagNotification}})).
		Get(ctx)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkRead 标记通知已读，成功后失效 notification 标签
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	if err := requireID("notification id", id); err != nil {
		return err
	}
	if _, err := Request[struct{}](c).Path(fmt.Sprintf("%s/%d/read", notificationsPath, id)).Put(ctx); err != nil {
		return err
	}
	c.invalidate(ctx, TagNotification)
	return nil
}

// MarkAllRead 全部标记已读
func (c *Client) MarkAllRead(ctx context.Context) error {
	if _, err := Request[struct{}](c).Path(markAllReadPath).Put(ctx); err != nil {
		return err
	}
	c.invalidate(ctx, TagNotification)
	return nil
}
