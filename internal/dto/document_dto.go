package dto

// DocumentCreateRequest Document creation parameters
// 创建文档请求参数
type DocumentCreateRequest struct {
	Name      string `json:"name" form:"name" binding:"required,runemax=200"`
	Markdown  string `json:"markdown" form:"markdown"`
	ShareWith string `json:"shareWith" form:"shareWith" binding:"omitempty,email"`
}

// DocumentDTO Created document
// 已创建的文档
type DocumentDTO struct {
	ID   string `json:"id"`
	Link string `json:"link"`
	Name string `json:"name"`
}
