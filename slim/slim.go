// Package slim 实现在线增量训练的 SLIM 物品-物品推荐模型（MSE 损失 + FTRL 优化）。
//
// 训练规则："无交互即无更新"——只在用户（最近）交互过的物品对上做梯度更新，
// 其余物品对的梯度恒为 0，稀疏矩阵里永远不会物化从未共现的对。
// 参考 https://github.com/MaurizioFD/RecSys_Course_AT_PoliMi/issues/22 的讨论。
package slim

import (
	"math"

	"go.uber.org/zap"

	"github.com/rushteam/slimrec/core"
	"github.com/rushteam/slimrec/ftrl"
	"github.com/rushteam/slimrec/ids"
	"github.com/rushteam/slimrec/interaction"
	"github.com/rushteam/slimrec/persist"
	"github.com/rushteam/slimrec/pkg/logs"
)

const (
	// recentWindow 每次权重更新考虑的最近交互物品数，限制梯度扇出
	recentWindow = 20
	// gradEpsilon 梯度幅度阈值，低于它的更新直接跳过（历史评分接近 0 的物品噪声更新）
	gradEpsilon = 1e-6
)

// Config 是模型超参数。
type Config struct {
	Alpha       float64 // FTRL 学习率系数
	Beta        float64 // FTRL 学习率平滑项
	Lambda1     float64 // L1 正则强度
	Lambda2     float64 // L2 正则强度
	MinValue    float64 // 评分下界
	MaxValue    float64 // 评分上界
	DecayInDays float64 // 评分半衰期（天）；<= 0 表示不衰减
}

// DefaultConfig 返回默认超参数。
func DefaultConfig() Config {
	return Config{
		Alpha:    0.5,
		Beta:     1.0,
		Lambda1:  0.0002,
		Lambda2:  0.0001,
		MinValue: -5.0,
		MaxValue: 10.0,
	}
}

// IdentifiedInteraction 是已完成 ID 映射的交互事件，供批量管道直接喂入。
type IdentifiedInteraction struct {
	UserID    int32
	ItemID    int32
	Timestamp float64
	Rating    float64
}

// KeyPair 是一对未映射的外部键。
type KeyPair struct {
	User core.Key
	Item core.Key
}

// IDPair 是一对映射后的内部 ID。
type IDPair struct {
	UserID int32
	ItemID int32
}

// SlimMSE 是模型编排器：组合交互存储、FTRL 优化器和两个标识符注册表。
//
// 并发模型：Fit / FitIdentified 是顺序的（同批次内后续事件依赖前面事件写入的
// 交互状态），由调用方保证 fit 调用之间互斥；读操作内部做数据并行归约，
// 只访问权重快照和存储的读方法。
type SlimMSE struct {
	interactions   *interaction.UserItemInteractions
	opt            *ftrl.FTRL
	cumulativeLoss float64
	steps          int64
	userIDs        *ids.Identifier
	itemIDs        *ids.Identifier

	router  persist.Router
	workers int
}

// Option 配置模型的外部协作者。
type Option func(*SlimMSE)

// WithS3Client 注入 S3 兼容客户端，启用 s3:// 路径的 Save/Load。
func WithS3Client(c core.S3Client) Option {
	return func(m *SlimMSE) { m.router.S3 = c }
}

// WithWorkers 设置读路径并行归约的 worker 数（默认 GOMAXPROCS 派生值）。
func WithWorkers(n int) Option {
	return func(m *SlimMSE) {
		if n > 0 {
			m.workers = n
		}
	}
}

// New 创建模型。构造即就绪，没有中间状态。
func New(cfg Config, opts ...Option) (*SlimMSE, error) {
	logs.Init()

	store, err := interaction.New(cfg.MinValue, cfg.MaxValue, cfg.DecayInDays)
	if err != nil {
		return nil, err
	}
	m := &SlimMSE{
		interactions: store,
		opt:          ftrl.New(cfg.Alpha, cfg.Beta, cfg.Lambda1, cfg.Lambda2),
		userIDs:      ids.New("user"),
		itemIDs:      ids.New("item"),
		workers:      defaultWorkers(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Fit 按给定顺序逐条消费交互事件：映射 ID → 写入交互 → 权重更新。
// 单条事件失败只记告警并跳过，不中断整个批次。
func (m *SlimMSE) Fit(events []core.Interaction, updateExisting bool) {
	for _, ev := range events {
		userID, err := m.userIDs.Identify(ev.User)
		if err != nil {
			logs.Logger().Warn("failed to fit interaction",
				zap.String("user", ev.User.String()), zap.String("item", ev.Item.String()), zap.Error(err))
			continue
		}
		itemID, err := m.itemIDs.Identify(ev.Item)
		if err != nil {
			logs.Logger().Warn("failed to fit interaction",
				zap.String("user", ev.User.String()), zap.String("item", ev.Item.String()), zap.Error(err))
			continue
		}
		m.interactions.AddInteraction(userID, itemID, ev.Timestamp, ev.Rating, updateExisting)
		m.updateWeights(userID, itemID)
	}
}

// FitIdentified 与 Fit 相同，但接受已映射的整数 ID（调用方已完成 interning 的批量管道）。
func (m *SlimMSE) FitIdentified(events []IdentifiedInteraction, updateExisting bool) {
	for _, ev := range events {
		m.interactions.AddInteraction(ev.UserID, ev.ItemID, ev.Timestamp, ev.Rating, updateExisting)
		m.updateWeights(ev.UserID, ev.ItemID)
	}
}

// BulkIdentify 批量把 (用户键, 物品键) 映射/分配为内部 ID，不做任何训练。
func (m *SlimMSE) BulkIdentify(pairs []KeyPair) ([]IDPair, error) {
	out := make([]IDPair, 0, len(pairs))
	for _, p := range pairs {
		userID, err := m.userIDs.Identify(p.User)
		if err != nil {
			return nil, err
		}
		itemID, err := m.itemIDs.Identify(p.Item)
		if err != nil {
			return nil, err
		}
		out = append(out, IDPair{UserID: userID, ItemID: itemID})
	}
	return out, nil
}

// updateWeights 对刚观测到的 (user, item) 做一次在线更新。
// 预测误差 dloss = predicted - actual；对用户最近交互过的每个其它物品 ui，
// grad = dloss * rating(ui)，更新坐标 (ui, item)——ui 是来源、item 是预测目标，
// 方向不可交换。
func (m *SlimMSE) updateWeights(userID, itemID int32) {
	userItems := m.interactions.GetUserItems(userID, recentWindow)
	predicted := m.predictByID(userID, itemID, false)
	actual := m.interactions.GetUserItemRating(userID, itemID, 0.0)
	dloss := predicted - actual

	if math.IsNaN(dloss) || math.IsInf(dloss, 0) {
		logs.Logger().Debug("dloss is not finite, skipping weight update",
			zap.Int32("user_id", userID), zap.Int32("item_id", itemID),
			zap.Float64("predicted", predicted), zap.Float64("actual", actual))
		return
	}

	m.cumulativeLoss += math.Abs(dloss)
	m.steps++

	for _, ui := range userItems {
		if ui == itemID {
			continue
		}
		// 优化器不自保护：非有限梯度必须在这里拦截，否则累计量被污染后
		// 预测会返回 NaN。dloss 和评分都有限时乘积仍可能溢出到 ±Inf。
		grad := dloss * m.interactions.GetUserItemRating(userID, ui, 0.0)
		if math.IsNaN(grad) || math.IsInf(grad, 0) {
			logs.Logger().Debug("gradient is not finite, skipping pair update",
				zap.Int32("user_id", userID), zap.Int32("src_item_id", ui),
				zap.Int32("dst_item_id", itemID), zap.Float64("dloss", dloss))
			continue
		}
		if math.Abs(grad) <= gradEpsilon {
			continue
		}
		m.opt.UpdateGradients(ftrl.Pair{Src: ui, Dst: itemID}, grad)
	}
}

// EmpiricalError 返回自上次重置以来所有权重更新步的平均绝对误差（无步数时为 0）。
// reset 为 true 时在同一次调用里原子地读取并清零累计量。
func (m *SlimMSE) EmpiricalError(reset bool) float64 {
	if m.steps == 0 {
		return 0.0
	}
	err := m.cumulativeLoss / float64(m.steps)
	if reset {
		m.cumulativeLoss = 0.0
		m.steps = 0
	}
	return err
}

// Steps 返回累计的权重更新步数（观测用）。
func (m *SlimMSE) Steps() int64 { return m.steps }
