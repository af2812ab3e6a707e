package campus

import (
	"context"
	"fmt"
)

const (
	adminPath          = "/admin"
	adminCompaniesPath = "/admin/companies"
	adminJobsPath      = "/admin/jobs"
)

type reviewRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PendingCompanies 待审核企业（缓存，标签 admin）
func (c *Client) PendingCompanies(ctx context.Context, query PageQuery) (*Page[Company], error) {
	return Request[*Page[Company]](c).
		Path(adminCompaniesPath + "/pending").
		QueryMap(query.params()).
		Tags(TagAdmin).
		Get(ctx)
}

// PendingJobs 待审核岗位
func (c *Client) PendingJobs(ctx context.Context, query PageQuery) (*Page[Job], error) {
	return Request[*Page[Job]](c).
		Path(adminJobsPath+"/pending").
		QueryMap(query.params()).
		Tags(TagAdmin, TagJob).
		Get(ctx)
}

// ApproveCompany 通过企业审核，失效 /admin 下的全部缓存
func (c *Client) ApproveCompany(ctx context.Context, id int64) error {
	return c.reviewCompany(ctx, id, "approve", "")
}

// RejectCompany 驳回企业审核
func (c *Client) RejectCompany(ctx context.Context, id int64, reason string) error {
	return c.reviewCompany(ctx, id, "reject", reason)
}

func (c *Client) reviewCompany(ctx context.Context, id int64, action, reason string) error {
	if err := requireID("company id", id); err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d/%s", adminCompaniesPath, id, action)
	if _, err := Request[struct{}](c).Path(path).Body(reviewRequest{Reason: reason}).Put(ctx); err != nil {
		return err
	}
	c.ClearByURLPrefix(adminPath)
	return nil
}

// RejectJob 下架违规岗位，失效 /admin 下的缓存和 job 标签
func (c *Client) RejectJob(ctx context.Context, id int64, reason string) error {
	if err := requireID("job id", id); err != nil {
		return err
	}
	if reason == "" {
		return fmt.Errorf("reject reason is required")
	}

	path := fmt.Sprintf("%s/%d/reject", adminJobsPath, id)
	if _, err := Request[struct{}](c).Path(path).Body(reviewRequest{Reason: reason}).Put(ctx); err != nil {
		return err
	}
	c.ClearByURLPrefix(adminPath)
	c.invalidate(ctx, TagJob)
	return nil
}
