// Package slimrec 是一个在线增量训练的物品-物品推荐引擎（SLIM + FTRL）。
//
// 设计要点：
// - Online-first: 交互流到达即训练（fit），无需离线批处理
// - 稀疏性: FTRL-Proximal 的 L1 软阈值让从未共现的物品对权重恒为 0
// - 时间感知: 交互存储支持按半衰期衰减，旧行为影响力随时间下降
package slimrec

import (
	"github.com/rushteam/slimrec/core"
	"github.com/rushteam/slimrec/slim"
)

// 轻量 facade：便于用户直接 import "slimrec" 使用核心抽象。
type Model = slim.SlimMSE
type Config = slim.Config
type Key = core.Key
type Interaction = core.Interaction
type ScoredItem = core.ScoredItem

var (
	New           = slim.New
	Load          = slim.Load
	DefaultConfig = slim.DefaultConfig
	StringKey     = core.StringKey
	IntKey        = core.IntKey
)
