package domain

import "strings"

// ValidationError 表示课程数据没有通过业务校验。
// Fields 中记录所有不合法的字段名，方便前端直接定位表单项。
type ValidationError struct {
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "字段校验失败: " + strings.Join(e.Fields, ", ")
}
