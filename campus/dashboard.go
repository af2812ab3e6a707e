package campus

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dashboard 首页聚合数据
type Dashboard struct {
	User         *User
	UnreadCount  int
	Applications *Page[Application]
	LatestJobs   *Page[Job]
}

const dashboardPageSize = 5

// Dashboard 并发加载首页数据，任一请求失败则整体失败
// 学生账号额外加载最近的投递记录。
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := c.Me(ctx)
		d.User = user
		return err
	})
	g.Go(func() error {
		count, err := c.UnreadCount(ctx)
		d.UnreadCount = count
		return err
	})
	g.Go(func() error {
		jobs, err := c.ListJobs(ctx, JobQuery{PageQuery: PageQuery{Page: 1, Size: dashboardPageSize}})
		d.LatestJobs = jobs
		return err
	})
	if c.Session().HasRole(RoleStudent) {
		g.Go(func() error {
			apps, err := c.MyApplications(ctx, PageQuery{Page: 1, Size: dashboardPageSize})
			d.Applications = apps
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
