package campus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShinyNito/campushire/core"
)

const (
	jobsPath        = "/jobs"
	companyJobsPath = "/company/jobs"
)

func jobPath(id int64) string {
	return fmt.Sprintf("%s/%d", jobsPath, id)
}

// JobTag 单个岗位的缓存标签
func JobTag(id int64) string {
	return fmt.Sprintf("%s:%d", TagJob, id)
}

// ListJobs 岗位列表
// 响应经过 HTTP 缓存拦截器，缓存 2 分钟并打上 job 标签。
func (c *Client) ListJobs(ctx context.Context, query JobQuery) (*Page[Job], error) {
	return Request[*Page[Job]](c).
		Path(jobsPath).
		QueryMap(query.params()).
		Cache(core.CacheWith(core.CacheOptions{TTL: 2 * time.Minute, Tags: []string{TagJob}})).
		Get(ctx)
}

// GetJob 岗位详情（缓存，标签 job 与 job:<id>）
func (c *Client) GetJob(ctx context.Context, id int64) (*Job, error) {
	if err := requireID("job id", id); err != nil {
		return nil, err
	}
	return c.getJob(ctx, id)
}

func (c *Client) loadJob(ctx context.Context, id int64) (*Job, error) {
	return Request[*Job](c).Path(jobPath(id)).NoCache().Get(ctx)
}

// CompanyJobs 企业自己发布的岗位
func (c *Client) CompanyJobs(ctx context.Context, query PageQuery) (*Page[Job], error) {
	return Request[*Page[Job]](c).
		Path(companyJobsPath).
		QueryMap(query.params()).
		Tags(TagJob).
		Get(ctx)
}

// CreateJob 发布岗位，成功后失效 job 标签
func (c *Client) CreateJob(ctx context.Context, input *JobInput) (*Job, error) {
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	job, err := Request[*Job](c).Path(jobsPath).Body(input).Post(ctx)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, TagJob)
	return job, nil
}

// UpdateJob 更新岗位，成功后失效 job 标签
func (c *Client) UpdateJob(ctx context.Context, id int64, input *JobInput) (*Job, error) {
	if err := requireID("job id", id); err != nil {
		return nil, err
	}
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	job, err := Request[*Job](c).Path(jobPath(id)).Body(input).Put(ctx)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, TagJob)
	return job, nil
}

// DeleteJob 删除岗位，成功后失效 job 标签
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	if err := requireID("job id", id); err != nil {
		return err
	}

	if _, err := Request[struct{}](c).Path(jobPath(id)).Delete(ctx); err != nil {
		return err
	}
	c.invalidate(ctx, TagJob)
	return nil
}

// invalidate 按标签失效缓存并记录日志
func (c *Client) invalidate(ctx context.Context, tags ...string) {
	c.cfg.Cache.ClearByTags(tags...)
	c.cfg.Logger.DebugContext(ctx, "cache invalidated", slog.Any("tags", tags))
}

func validateJobInput(input *JobInput) error {
	if input == nil {
		return fmt.Errorf("job input is nil")
	}
	if input.Title == "" {
		return fmt.Errorf("job title is required")
	}
	return nil
}
