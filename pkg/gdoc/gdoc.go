package gdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleDocMimeType Drive 会把上传的 HTML 转换为该类型
const GoogleDocMimeType = "application/vnd.google-apps.document"

// UnknownErrorType 上游未返回原因时使用
const UnknownErrorType = "unknown_error"

// UnknownErrorMessage 未知错误对外的消息
const UnknownErrorMessage = "the document service is unavailable, please try again later"

// Document 创建结果
type Document struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// APIError 文档服务返回的非成功响应
type APIError struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("document service failed (%s): %s", e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client 文档创建客户端，凭据按调用传入（每个用户一份）
type Client interface {
	CreateDocument(ctx context.Context, credentials []byte, name, markdown, shareWithEmail string) (*Document, error)
}

// Config 客户端配置
type Config struct {
	ApplicationName string
}

type driveClient struct {
	config Config
	md     goldmark.Markdown
	// extra 追加到每次 drive.NewService 的选项，测试用于替换 endpoint
	extra []option.ClientOption
}

// NewClient 基于 Google Drive v3 的文档客户端
func NewClient(cfg Config, extra ...option.ClientOption) Client {
	return &driveClient{
		config: cfg,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		extra:  extra,
	}
}

// RenderHTML Markdown 转 HTML
func (c *driveClient) RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c *driveClient) CreateDocument(ctx context.Context, credentials []byte, name, markdown, shareWithEmail string) (*Document, error) {
	if _, err := ParseCredentials(credentials); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("document name is required")
	}

	html, err := c.RenderHTML(markdown)
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	opts := []option.ClientOption{
		option.WithCredentialsJSON(credentials),
		option.WithScopes(drive.DriveFileScope),
	}
	if c.config.ApplicationName != "" {
		opts = append(opts, option.WithUserAgent(c.config.ApplicationName))
	}
	opts = append(opts, c.extra...)

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, toAPIError(err)
	}

	file, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: GoogleDocMimeType,
	}).Media(strings.NewReader(html), googleapi.ContentType("text/html")).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, toAPIError(err)
	}

	doc := &Document{ID: file.Id, Link: file.WebViewLink}
	if doc.Link == "" {
		doc.Link = "https://docs.google.com/document/d/" + file.Id + "/edit"
	}

	if shareWithEmail != "" {
		_, err := svc.Permissions.Create(file.Id, &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: shareWithEmail,
		}).SendNotificationEmail(false).Context(ctx).Do()
		if err != nil {
			return doc, toAPIError(err)
		}
	}

	return doc, nil
}

func toAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		t := UnknownErrorType
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			t = gerr.Errors[0].Reason
		}
		return &APIError{Message: gerr.Message, Type: t, StatusCode: gerr.Code}
	}
	return &APIError{Message: UnknownErrorMessage, Type: UnknownErrorType, Err: err}
}
