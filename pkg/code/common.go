package code

import "net/http"

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	SuccessCreate = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessUpdate = NewSuss(3, lang{en: "Updated successfully", zh_cn: "更新成功"})
	SuccessDelete = NewSuss(4, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessLogin  = NewSuss(5, lang{en: "Login successful", zh_cn: "登录成功"})
)

// 通用错误 4xx/5xx
var (
	ErrorServerInternal   = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorNotFoundAPI      = NewError(404, lang{en: "API not found", zh_cn: "接口不存在"}).withHTTPStatus(http.StatusNotFound)
	ErrorInvalidParams    = NewError(400, lang{en: "Invalid parameters", zh_cn: "参数错误"}).withHTTPStatus(http.StatusBadRequest)
	ErrorTooManyRequests  = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"}).withHTTPStatus(http.StatusTooManyRequests)
	ErrorRequestTimeout   = NewError(408, lang{en: "Request timeout", zh_cn: "请求超时"}).withHTTPStatus(http.StatusRequestTimeout)
	ErrorDBQuery          = NewError(501, lang{en: "Database query failed", zh_cn: "数据库查询失败"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorNotUserAuthToken = NewError(401, lang{en: "Authorization token is missing", zh_cn: "缺少授权令牌"}).withHTTPStatus(http.StatusUnauthorized)
	ErrorForbidden        = NewError(403, lang{en: "You do not have permission to perform this action", zh_cn: "无权执行此操作"}).withHTTPStatus(http.StatusForbidden)

	ErrorInvalidUserAuthToken = NewError(402, lang{en: "Authorization token is invalid or expired", zh_cn: "授权令牌无效或已过期"}).withHTTPStatus(http.StatusUnauthorized)
)

// 用户 1xxx
var (
	ErrorUserNotFound        = NewError(1001, lang{en: "User does not exist", zh_cn: "用户不存在"}).withHTTPStatus(http.StatusNotFound)
	ErrorUserLoginFailed     = NewError(1002, lang{en: "Incorrect email or password", zh_cn: "邮箱或密码错误"}).withHTTPStatus(http.StatusUnauthorized)
	ErrorUserAlreadyExists   = NewError(1003, lang{en: "User already exists", zh_cn: "用户已存在"}).withHTTPStatus(http.StatusConflict)
	ErrorUserEmailInvalid    = NewError(1004, lang{en: "Email address is invalid", zh_cn: "邮箱地址无效"}).withHTTPStatus(http.StatusBadRequest)
	ErrorUserUsernameInvalid = NewError(1005, lang{en: "Username must be 3-15 letters, digits or underscores", zh_cn: "用户名须为 3-15 位字母、数字或下划线"}).withHTTPStatus(http.StatusBadRequest)
	ErrorTokenGenerate       = NewError(1006, lang{en: "Failed to issue token", zh_cn: "令牌签发失败"}).withHTTPStatus(http.StatusInternalServerError)
)

// Prompt 2xxx
var (
	ErrorPromptNotFound      = NewError(2001, lang{en: "Prompt not found", zh_cn: "提示词不存在"}).withHTTPStatus(http.StatusNotFound)
	ErrorPromptInvalid       = NewError(2002, lang{en: "Prompt fields are invalid", zh_cn: "提示词字段无效"}).withHTTPStatus(http.StatusBadRequest)
	ErrorPromptConflict      = NewError(2003, lang{en: "Prompt was modified by another request, reload and retry", zh_cn: "提示词已被其他请求修改，请刷新后重试"}).withHTTPStatus(http.StatusConflict)
	ErrorPromptLineageMixed  = NewError(2004, lang{en: "Prompts do not belong to the same lineage", zh_cn: "提示词不属于同一版本链"}).withHTTPStatus(http.StatusBadRequest)
	ErrorPromptDiffFailed    = NewError(2005, lang{en: "Failed to compare prompt versions", zh_cn: "提示词版本比较失败"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorPromptCreateFailed  = NewError(2006, lang{en: "Failed to save prompt", zh_cn: "提示词保存失败"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorPromptDeleteFailed  = NewError(2007, lang{en: "Failed to delete prompt", zh_cn: "提示词删除失败"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorPromptVersionAbsent = NewError(2008, lang{en: "Prompt version not found in lineage", zh_cn: "版本链中不存在该版本"}).withHTTPStatus(http.StatusNotFound)
)

// Chat 3xxx
var (
	ErrorChatCompletionFailed = NewError(3001, lang{en: "Chat completion service returned an error", zh_cn: "对话补全服务返回错误"}).withHTTPStatus(http.StatusBadGateway)
	ErrorChatMessageEmpty     = NewError(3002, lang{en: "Message cannot be empty", zh_cn: "消息不能为空"}).withHTTPStatus(http.StatusBadRequest)
	ErrorChatHistoryFailed    = NewError(3003, lang{en: "Failed to access chat history", zh_cn: "对话历史读写失败"}).withHTTPStatus(http.StatusInternalServerError)
)

// Credential / Document 4xxx
var (
	ErrorCredentialMissing      = NewError(4001, lang{en: "Please select a file to upload", zh_cn: "请选择要上传的文件"}).withHTTPStatus(http.StatusBadRequest)
	ErrorCredentialInvalid      = NewError(4002, lang{en: "Invalid service account credentials format", zh_cn: "服务账号凭据格式无效"}).withHTTPStatus(http.StatusBadRequest)
	ErrorCredentialTooLarge     = NewError(4003, lang{en: "Credentials file is too large", zh_cn: "凭据文件过大"}).withHTTPStatus(http.StatusRequestEntityTooLarge)
	ErrorCredentialNotFound     = NewError(4004, lang{en: "No credentials uploaded", zh_cn: "尚未上传凭据"}).withHTTPStatus(http.StatusNotFound)
	ErrorCredentialSaveFailed   = NewError(4005, lang{en: "Failed to save credentials", zh_cn: "凭据保存失败"}).withHTTPStatus(http.StatusInternalServerError)
	ErrorDocumentCreateFailed   = NewError(4006, lang{en: "Document service returned an error", zh_cn: "文档服务返回错误"}).withHTTPStatus(http.StatusBadGateway)
	ErrorDocumentNameEmpty      = NewError(4007, lang{en: "Document name cannot be empty", zh_cn: "文档名称不能为空"}).withHTTPStatus(http.StatusBadRequest)
	ErrorCredentialNotAvailable = NewError(4008, lang{en: "Valid credentials are required, upload them in settings first", zh_cn: "需要有效凭据，请先在设置中上传"}).withHTTPStatus(http.StatusPreconditionFailed)
)
