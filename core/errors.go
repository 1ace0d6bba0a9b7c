package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 注册表错误：NOT_FOUND, INTERNAL_ERROR
//   - 持久化错误：IO_ERROR, INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "IO_ERROR"）
	Message string // 错误消息
	Module  string // 模块名称（如 "ids", "persist", "model"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError（支持 %w 包装链），如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部不变量被破坏
	ErrorCodeIO            = "IO_ERROR"       // 读写/序列化失败
)

// 模块名称常量
const (
	ModuleIDs     = "ids"     // 标识符注册表
	ModulePersist = "persist" // 持久化
	ModuleModel   = "model"   // 模型编排
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsInternalError 检查错误是否为 INTERNAL_ERROR
func IsInternalError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInternalError
	}
	return false
}

// IsIOError 检查错误是否为 IO_ERROR
func IsIOError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeIO
	}
	return false
}
