package core

import "strconv"

// KeyKind 标记外部键的具体类型。
// 外部键是调用方的业务 ID（字符串或整数），内部统一映射为稠密整数 ID。
type KeyKind uint8

const (
	// KeyString 字符串键（如 "user_123"、商品 SKU）
	KeyString KeyKind = iota + 1
	// KeyInt 整数键（如数据库自增 ID）
	KeyInt
)

// Key 是外部键的封闭标签变体（tagged variant）。
// 设计原则：
//   - 可比较（可直接作为 map key）
//   - 可序列化（msgpack 字段标签）
//   - 封闭类型集合：只支持 string / int64，替代宿主语言的动态类型
type Key struct {
	Kind KeyKind `msgpack:"k"`
	Str  string  `msgpack:"s"`
	Int  int64   `msgpack:"i"`
}

// StringKey 构造字符串键。
func StringKey(s string) Key {
	return Key{Kind: KeyString, Str: s}
}

// IntKey 构造整数键。
func IntKey(i int64) Key {
	return Key{Kind: KeyInt, Int: i}
}

// IsZero 判断是否为零值键（未初始化）。
func (k Key) IsZero() bool {
	return k.Kind == 0
}

// String 返回键的可读形式，用于日志/调试。
func (k Key) String() string {
	switch k.Kind {
	case KeyString:
		return k.Str
	case KeyInt:
		return strconv.FormatInt(k.Int, 10)
	default:
		return "<nil>"
	}
}

// ScoredItem 是带分数的推荐结果条目：外部键 + 预测分数。
// Recommend 的打分结果统一用此结构承载，便于过滤/观测。
type ScoredItem struct {
	Key   Key
	Score float64
}
