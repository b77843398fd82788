package http

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Error   string `json:"error"`             // 错误消息
	Details string `json:"details,omitempty"` // 错误详情（可选）
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(message string, details ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Error: message,
	}
	if len(details) > 0 && details[0] != "" {
		resp.Details = details[0]
	}
	return resp
}
