// Package ids 实现外部键 ↔ 稠密整数 ID 的双向注册表。
// 用户和物品各持有一个独立实例，两个命名空间永不交叉引用。
package ids

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rushteam/slimrec/core"
)

// Identifier 是单命名空间的标识符注册表。
//
// 契约：
//   - Identify 首次见到的键分配下一个 ID（从 0 单调递增，不复用、不重分配）
//   - GetID 只查询，永不分配
//   - Get 反查外部键，未知 ID 返回错误
//
// 非并发安全：与交互存储一致，由调用方保证 fit 间的互斥。
type Identifier struct {
	namespace string
	keys      []core.Key         // id -> key（下标即 ID）
	index     map[core.Key]int32 // key -> id
}

// New 创建一个空注册表。namespace 仅用于日志/错误消息（如 "user" / "item"）。
func New(namespace string) *Identifier {
	return &Identifier{
		namespace: namespace,
		keys:      make([]core.Key, 0),
		index:     make(map[core.Key]int32),
	}
}

// Namespace 返回命名空间名称。
func (r *Identifier) Namespace() string { return r.namespace }

// Len 返回已分配的 ID 数量。
func (r *Identifier) Len() int { return len(r.keys) }

// Identify 返回键对应的 ID，首次见到时分配新 ID（幂等 interning）。
// 仅在内部不变量被破坏（正反向映射不一致）时返回错误。
func (r *Identifier) Identify(key core.Key) (int32, error) {
	if id, ok := r.index[key]; ok {
		return id, nil
	}
	if len(r.keys) != len(r.index) {
		// 正反向映射长度不一致说明注册表已损坏，宁可大声失败也不返回错误 ID
		return 0, core.NewDomainError(core.ModuleIDs, core.ErrorCodeInternalError,
			fmt.Sprintf("ids: %s registry corrupted: %d keys vs %d index entries",
				r.namespace, len(r.keys), len(r.index)))
	}
	id := int32(len(r.keys))
	r.keys = append(r.keys, key)
	r.index[key] = id
	return id, nil
}

// GetID 查询键对应的 ID，不分配。
func (r *Identifier) GetID(key core.Key) (int32, bool) {
	id, ok := r.index[key]
	return id, ok
}

// Get 反查 ID 对应的外部键，未知 ID 返回 NOT_FOUND。
func (r *Identifier) Get(id int32) (core.Key, error) {
	if id < 0 || int(id) >= len(r.keys) {
		return core.Key{}, core.NewDomainError(core.ModuleIDs, core.ErrorCodeNotFound,
			fmt.Sprintf("ids: unknown %s id %d", r.namespace, id))
	}
	return r.keys[id], nil
}

// identifierState 是持久化形态：只存命名空间和按 ID 排列的键表，索引在加载时重建。
type identifierState struct {
	Namespace string     `msgpack:"namespace"`
	Keys      []core.Key `msgpack:"keys"`
}

var (
	_ msgpack.CustomEncoder = (*Identifier)(nil)
	_ msgpack.CustomDecoder = (*Identifier)(nil)
)

// EncodeMsgpack 实现 msgpack.CustomEncoder。
func (r *Identifier) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(identifierState{
		Namespace: r.namespace,
		Keys:      r.keys,
	})
}

// DecodeMsgpack 实现 msgpack.CustomDecoder，重建 key -> id 索引。
// 键表中出现重复键说明存档已损坏，按 INTERNAL_ERROR 处理。
func (r *Identifier) DecodeMsgpack(dec *msgpack.Decoder) error {
	var st identifierState
	if err := dec.Decode(&st); err != nil {
		return err
	}
	index := make(map[core.Key]int32, len(st.Keys))
	for i, k := range st.Keys {
		if _, dup := index[k]; dup {
			return core.NewDomainError(core.ModuleIDs, core.ErrorCodeInternalError,
				fmt.Sprintf("ids: %s registry corrupted: duplicate key %s", st.Namespace, k))
		}
		index[k] = int32(i)
	}
	r.namespace = st.Namespace
	r.keys = st.Keys
	if r.keys == nil {
		r.keys = make([]core.Key, 0)
	}
	r.index = index
	return nil
}
