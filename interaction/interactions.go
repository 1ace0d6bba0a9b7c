// Package interaction 实现带时间感知的用户-物品交互存储。
// 按用户保存 (物品, 评分, 时间戳)，读取时可选按半衰期做指数衰减。
package interaction

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Record 是单条交互记录：裁剪后的评分和观测时间戳（Unix 秒）。
type Record struct {
	Value  float64 `msgpack:"v"`
	Tstamp float64 `msgpack:"t"`
}

// UserItemInteractions 是交互存储。
//
// 不变量：
//   - 每个 (user, item) 至多一条"当前"记录；重复观测按 updateExisting 覆盖或忽略
//   - 评分始终位于 [MinValue, MaxValue]
//   - 越界/未知 ID 一律按"无记录"处理，热路径上没有错误分支
//
// 衰减：按 "Time Weight Collaborative Filtering" 的半衰期方案，
// decayRate = 1 - ln2/decayInDays，读取时生效值为 v * decayRate^经过天数。
type UserItemInteractions struct {
	Users     map[int32]map[int32]Record `msgpack:"users"`
	Items     map[int32]bool             `msgpack:"items"`
	MinValue  float64                    `msgpack:"min_value"`
	MaxValue  float64                    `msgpack:"max_value"`
	DecayRate float64                    `msgpack:"decay_rate"` // 0 表示不衰减

	// nowFn 是读取衰减时的时钟，测试可注入；反序列化后为 nil 时回退到 time.Now
	nowFn func() float64
}

// New 创建交互存储。decayInDays <= 0 表示不启用衰减；
// 启用时必须 > ln2（约 0.693 天），否则衰减率为非正，分数次幂会产生 NaN。
func New(minValue, maxValue, decayInDays float64) (*UserItemInteractions, error) {
	if maxValue <= minValue {
		return nil, fmt.Errorf("interaction: max_value should be greater than min_value: %v <= %v", maxValue, minValue)
	}
	if decayInDays > 0 && decayInDays <= math.Ln2 {
		return nil, fmt.Errorf("interaction: decay_in_days should be greater than ln2 (~0.693): %v", decayInDays)
	}
	s := &UserItemInteractions{
		Users:    make(map[int32]map[int32]Record),
		Items:    make(map[int32]bool),
		MinValue: minValue,
		MaxValue: maxValue,
	}
	if decayInDays > 0 {
		s.DecayRate = 1.0 - math.Ln2/decayInDays
	}
	return s, nil
}

func (s *UserItemInteractions) now() float64 {
	if s.nowFn != nil {
		return s.nowFn()
	}
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// applyDecay 返回记录在当前时刻的生效值。
func (s *UserItemInteractions) applyDecay(rec Record) float64 {
	if s.DecayRate == 0 {
		return rec.Value
	}
	elapsedDays := (s.now() - rec.Tstamp) / 86400.0
	return rec.Value * math.Pow(s.DecayRate, elapsedDays)
}

// AddInteraction 记录一次交互。评分先裁剪到 [MinValue, MaxValue]；
// 已存在记录时仅在 updateExisting 为 true 时覆盖，否则静默保留旧值（不是错误）。
func (s *UserItemInteractions) AddInteraction(userID, itemID int32, tstamp, rating float64, updateExisting bool) {
	rating = math.Max(s.MinValue, math.Min(rating, s.MaxValue))

	items, ok := s.Users[userID]
	if !ok {
		items = make(map[int32]Record)
		s.Users[userID] = items
	}
	if _, exists := items[itemID]; !exists || updateExisting {
		items[itemID] = Record{Value: rating, Tstamp: tstamp}
	}
	s.Items[itemID] = true
}

// GetUserItemRating 返回 (user, item) 的衰减后评分；无记录时返回 def。
func (s *UserItemInteractions) GetUserItemRating(userID, itemID int32, def float64) float64 {
	rec, ok := s.Users[userID][itemID]
	if !ok {
		return def
	}
	return s.applyDecay(rec)
}

// GetUserItems 返回用户交互过的物品 ID。
// nRecent > 0 时按时间戳降序排列并取最近 nRecent 个（用于限制训练时的梯度扇出），
// 不足 nRecent 个时返回全部、同样最近优先；否则以任意顺序返回全部（预测时只需完整集合）。
func (s *UserItemInteractions) GetUserItems(userID int32, nRecent int) []int32 {
	items := s.Users[userID]
	if len(items) == 0 {
		return nil
	}
	if nRecent > 0 {
		type pair struct {
			itemID int32
			tstamp float64
		}
		pairs := make([]pair, 0, len(items))
		for itemID, rec := range items {
			pairs = append(pairs, pair{itemID: itemID, tstamp: rec.Tstamp})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].tstamp > pairs[j].tstamp
		})
		if nRecent > len(pairs) {
			nRecent = len(pairs)
		}
		out := make([]int32, 0, nRecent)
		for _, p := range pairs[:nRecent] {
			out = append(out, p.itemID)
		}
		return out
	}
	out := make([]int32, 0, len(items))
	for itemID := range items {
		out = append(out, itemID)
	}
	return out
}

// GetAllItemIDs 返回全量物品 ID（物品全集，用于相似物品候选）。
func (s *UserItemInteractions) GetAllItemIDs() []int32 {
	out := make([]int32, 0, len(s.Items))
	for itemID := range s.Items {
		out = append(out, itemID)
	}
	return out
}

// GetAllUserIDs 返回所有出现过的用户 ID（用于离线评估遍历）。
func (s *UserItemInteractions) GetAllUserIDs() []int32 {
	out := make([]int32, 0, len(s.Users))
	for userID := range s.Users {
		out = append(out, userID)
	}
	return out
}

// GetAllNonInteractedItems 返回用户未交互过的物品（推荐候选集）。
func (s *UserItemInteractions) GetAllNonInteractedItems(userID int32) []int32 {
	interacted := s.Users[userID]
	out := make([]int32, 0, len(s.Items))
	for itemID := range s.Items {
		if _, ok := interacted[itemID]; !ok {
			out = append(out, itemID)
		}
	}
	return out
}

// GetAllNonNegativeItems 返回当前（衰减后）评分 >= 0 的物品，
// 未交互过的物品默认评分 0，同样入选（用于不过滤已交互物品的推荐）。
func (s *UserItemInteractions) GetAllNonNegativeItems(userID int32) []int32 {
	out := make([]int32, 0, len(s.Items))
	for itemID := range s.Items {
		if s.GetUserItemRating(userID, itemID, 0.0) >= 0.0 {
			out = append(out, itemID)
		}
	}
	return out
}
