package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldPath 请求路径字段
	FieldPath = "path"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldPromptID 提示词 ID 字段
	FieldPromptID = "promptId"

	// FieldLineageID 版本链根 ID 字段
	FieldLineageID = "lineageId"

	// FieldVersion 提示词版本字段
	FieldVersion = "version"

	// FieldPolicy 授权策略字段
	FieldPolicy = "policy"

	// FieldUpstreamType 上游服务错误类型
	FieldUpstreamType = "upstreamType"

	// FieldDocumentID 文档 ID 字段
	FieldDocumentID = "documentId"

	// FieldTask 定时任务名称字段
	FieldTask = "task"
)
