package core

import (
	"errors"
	"fmt"
	"testing"
)

// TestKey_Comparable 测试键可以直接作为 map key 且类型参与区分
func TestKey_Comparable(t *testing.T) {
	m := map[Key]int{
		StringKey("42"): 1,
		IntKey(42):      2,
	}
	if m[StringKey("42")] != 1 || m[IntKey(42)] != 2 {
		t.Errorf("字符串键和整数键应是独立的 map key: %v", m)
	}
	if StringKey("a") == IntKey(0) {
		t.Errorf("不同类型的键不应相等")
	}
}

// TestKey_String 测试键的可读形式
func TestKey_String(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{StringKey("alice"), "alice"},
		{IntKey(-7), "-7"},
		{Key{}, "<nil>"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() 期望 %q，实际 %q", tt.want, got)
		}
	}
}

// TestKey_IsZero 测试零值键判定
func TestKey_IsZero(t *testing.T) {
	if !(Key{}).IsZero() {
		t.Errorf("零值键应判定为 zero")
	}
	if StringKey("").IsZero() {
		t.Errorf("空字符串键是合法键，不应判定为 zero")
	}
	if IntKey(0).IsZero() {
		t.Errorf("整数 0 键是合法键，不应判定为 zero")
	}
}

// TestDomainError_Classification 测试错误码分类和 errors.As 穿透
func TestDomainError_Classification(t *testing.T) {
	notFound := NewDomainError(ModuleIDs, ErrorCodeNotFound, "id not found")
	invalid := NewDomainError(ModulePersist, ErrorCodeInvalidInput, "bad path")

	if !IsNotFound(notFound) || IsNotFound(invalid) {
		t.Errorf("NOT_FOUND 分类错误")
	}
	if !IsInvalidInput(invalid) || IsInvalidInput(notFound) {
		t.Errorf("INVALID_INPUT 分类错误")
	}
	if IsNotFound(nil) || IsNotFound(errors.New("plain")) {
		t.Errorf("nil 和普通错误不应命中分类")
	}

	// 包装后仍可分类
	wrapped := fmt.Errorf("load model: %w", notFound)
	if !IsNotFound(wrapped) {
		t.Errorf("包装后的领域错误应仍可分类")
	}

	var de *DomainError
	if !errors.As(wrapped, &de) || de.Module != ModuleIDs {
		t.Errorf("errors.As 应取出领域错误: %v", de)
	}
}
