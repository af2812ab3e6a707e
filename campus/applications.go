package campus

import (
	"context"
	"fmt"
)

const (
	applicationsPath   = "/applications"
	myApplicationsPath = "/applications/my"
)

func applicationPath(id int64) string {
	return fmt.Sprintf("%s/%d", applicationsPath, id)
}

func jobApplicationsPath(jobID int64) string {
	return fmt.Sprintf("%s/applications", jobPath(jobID))
}

// Apply 投递岗位，成功后失效 application 标签
func (c *Client) Apply(ctx context.Context, req *ApplyRequest) (*Application, error) {
	if req == nil {
		return nil, fmt.Errorf("apply request is nil")
	}
	if err := requireID("job id", req.JobID); err != nil {
		return nil, err
	}

	app, err := Request[*Application](c).Path(applicationsPath).Body(req).Post(ctx)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, TagApplication)
	return app, nil
}

// MyApplications 学生的投递记录
// 命中缓存时立即返回，并在后台刷新。
func (c *Client) MyApplications(ctx context.Context, query PageQuery) (*Page[Application], error) {
	return c.myApplications(ctx, query)
}

func (c *Client) loadMyApplications(ctx context.Context, query PageQuery) (*Page[Application], error) {
	return Request[*Page[Application]](c).
		Path(myApplicationsPath).
		QueryMap(query.params()).
		NoCache().
		Get(ctx)
}

// JobApplications 企业查看某个岗位收到的投递
func (c *Client) JobApplications(ctx context.Context, jobID int64, query PageQuery) (*Page[Application], error) {
	if err := requireID("job id", jobID); err != nil {
		return nil, err
	}
	return Request[*Page[Application]](c).
		Path(jobApplicationsPath(jobID)).
		QueryMap(query.params()).
		Tags(TagApplication).
		Get(ctx)
}

// UpdateApplicationStatus 企业更新投递状态
func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, status ApplicationStatus, note string) (*Application, error) {
	if err := requireID("application id", id); err != nil {
		return nil, err
	}
	if status == "" {
		return nil, fmt.Errorf("status is required")
	}

	app, err := Request[*Application](c).
		Path(applicationPath(id) + "/status").
		Body(map[string]string{"status": string(status), "note": note}).
		Put(ctx)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, TagApplication)
	return app, nil
}

// WithdrawApplication 学生撤回投递
func (c *Client) WithdrawApplication(ctx context.Context, id int64) error {
	if err := requireID("application id", id); err != nil {
		return err
	}
	if _, err := Request[struct{}](c).Path(applicationPath(id)).Delete(ctx); err != nil {
		return err
	}
	c.invalidate(ctx, TagApplication)
	return nil
}
