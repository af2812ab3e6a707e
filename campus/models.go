package campus

import (
	"strconv"
	"time"
)

// Page 后端分页结果
type Page[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Current int   `json:"current"`
	Size    int   `json:"size"`
}

// PageQuery 分页参数，零值使用后端默认值
type PageQuery struct {
	Page int `json:"page,omitempty"`
	Size int `json:"size,omitempty"`
}

func (q PageQuery) params() map[string]string {
	params := make(map[string]string, 2)
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.Size > 0 {
		params["size"] = strconv.Itoa(q.Size)
	}
	return params
}

type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

type JobStatus string

const (
	JobStatusPending  JobStatus = "PENDING"
	JobStatusOpen     JobStatus = "OPEN"
	JobStatusClosed   JobStatus = "CLOSED"
	JobStatusRejected JobStatus = "REJECTED"
)

type Job struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"companyId"`
	CompanyName string    `json:"companyName,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	JobType     string    `json:"jobType,omitempty"`
	SalaryRange string    `json:"salaryRange,omitempty"`
	Status      JobStatus `json:"status,omitempty"`
	Deadline    string    `json:"deadline,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

type JobQuery struct {
	PageQuery
	Keyword  string `json:"keyword,omitempty"`
	Location string `json:"location,omitempty"`
	JobType  string `json:"jobType,omitempty"`
}

func (q JobQuery) params() map[string]string {
	params := q.PageQuery.params()
	if q.Keyword != "" {
		params["keyword"] = q.Keyword
	}
	if q.Location != "" {
		params["location"] = q.Location
	}
	if q.JobType != "" {
		params["jobType"] = q.JobType
	}
	return params
}

// JobInput 创建/更新岗位的请求体
type JobInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	JobType     string `json:"jobType,omitempty"`
	SalaryRange string `json:"salaryRange,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

type ApplicationStatus string

const (
	ApplicationSubmitted ApplicationStatus = "SUBMITTED"
	ApplicationViewed    ApplicationStatus = "VIEWED"
	ApplicationInterview ApplicationStatus = "INTERVIEW"
	ApplicationOffered   ApplicationStatus = "OFFERED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationWithdrawn ApplicationStatus = "WITHDRAWN"
)

type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"jobId"`
	JobTitle    string            `json:"jobTitle,omitempty"`
	StudentID   int64             `json:"studentId"`
	StudentName string            `json:"studentName,omitempty"`
	ResumeID    int64             `json:"resumeId,omitempty"`
	Status      ApplicationStatus `json:"status"`
	Note        string            `json:"note,omitempty"`
	CreatedAt   time.Time         `json:"createdAt,omitzero"`
}

type ApplyRequest struct {
	JobID       int64  `json:"jobId"`
	ResumeID    int64  `json:"resumeId,omitempty"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

type Resume struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"fileName"`
	URL       string    `json:"url"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Type      string    `json:"type,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

type NotificationQuery struct {
	PageQuery
	UnreadOnly bool `json:"unreadOnly,omitempty"`
}

func (q NotificationQuery) params() map[string]string {
	params := q.PageQuery.params()
	if q.UnreadOnly {
		params["unreadOnly"] = "true"
	}
	return params
}

type CompanyStatus string

const (
	CompanyPending  CompanyStatus = "PENDING"
	CompanyApproved CompanyStatus = "APPROVED"
	CompanyRejected CompanyStatus = "REJECTED"
)

type Company struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Industry    string        `json:"industry,omitempty"`
	ContactName string        `json:"contactName,omitempty"`
	Status      CompanyStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt,omitzero"`
}
