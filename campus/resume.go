package campus

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ShinyNito/campushire/core"
)

const (
	resumePath       = "/resumes/me"
	resumeExistsPath = "/resumes/exists"
	resumeUploadPath = "/resumes/upload"
)

type resumeExists struct {
	Exists bool `json:"exists"`
}

// CheckResumeExists 当前学生是否已上传简历，结果不缓存
func (c *Client) CheckResumeExists(ctx context.Context) (bool, error) {
	resp, err := Request[resumeExists](c).Path(resumeExistsPath).NoCache().Get(ctx)
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// GetResume 当前学生的简历（缓存，标签 resume）
func (c *Client) GetResume(ctx context.Context) (*Resume, error) {
	return Request[*Resume](c).
		Path(resumePath).
		Cache(core.CacheWith(core.CacheOptions{TTL: 10 * time.Minute, Tags: []string{TagResume}})).
		Get(ctx)
}

// UploadResume 上传简历文件（multipart），成功后失效 resume 标签
func (c *Client) UploadResume(ctx context.Context, fileName string, file io.Reader) (*Resume, error) {
	if fileName == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if file == nil {
		return nil, fmt.Errorf("file is nil")
	}

	resume, err := Request[*Resume](c).
		Path(resumeUploadPath).
		UploadFile("file", fileName, file).
		Post(ctx)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, TagResume)
	return resume, nil
}
