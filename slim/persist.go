package slim

import (
	"context"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rushteam/slimrec/ftrl"
	"github.com/rushteam/slimrec/ids"
	"github.com/rushteam/slimrec/interaction"
	"github.com/rushteam/slimrec/persist"
	"github.com/rushteam/slimrec/pkg/logs"
)

// modelState 是模型聚合的持久化形态：交互存储、优化器（含累计量）、
// 两个注册表和运行误差统计，一次性整体序列化。
type modelState struct {
	Interactions   *interaction.UserItemInteractions `msgpack:"interactions"`
	Opt            *ftrl.FTRL                        `msgpack:"ftrl"`
	CumulativeLoss float64                           `msgpack:"cumulative_loss"`
	Steps          int64                             `msgpack:"steps"`
	UserIDs        *ids.Identifier                   `msgpack:"user_ids"`
	ItemIDs        *ids.Identifier                   `msgpack:"item_ids"`
}

var (
	_ msgpack.CustomEncoder = (*SlimMSE)(nil)
	_ msgpack.CustomDecoder = (*SlimMSE)(nil)
)

// EncodeMsgpack 实现 msgpack.CustomEncoder。
func (m *SlimMSE) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(modelState{
		Interactions:   m.interactions,
		Opt:            m.opt,
		CumulativeLoss: m.cumulativeLoss,
		Steps:          m.steps,
		UserIDs:        m.userIDs,
		ItemIDs:        m.itemIDs,
	})
}

// DecodeMsgpack 实现 msgpack.CustomDecoder。
// 解码失败时不触碰接收者，调用方持有的旧模型保持可用。
func (m *SlimMSE) DecodeMsgpack(dec *msgpack.Decoder) error {
	st := modelState{
		Interactions: &interaction.UserItemInteractions{},
		Opt:          &ftrl.FTRL{},
		UserIDs:      ids.New(""),
		ItemIDs:      ids.New(""),
	}
	if err := dec.Decode(&st); err != nil {
		return err
	}
	m.interactions = st.Interactions
	m.opt = st.Opt
	m.cumulativeLoss = st.CumulativeLoss
	m.steps = st.Steps
	m.userIDs = st.UserIDs
	m.itemIDs = st.ItemIDs
	return nil
}

// Save 把整个模型聚合序列化后写入 path。
// path 支持 file://、裸路径、s3://bucket/key（需 WithS3Client）和 redis://addr/db/key。
// 调用阻塞到传输完成，每次调用至多一个传输在途。
func (m *SlimMSE) Save(ctx context.Context, path string) error {
	data, err := persist.Marshal(m)
	if err != nil {
		return err
	}
	store, key, err := m.router.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Put(ctx, key, data)
}

// Load 从 path 读取并重建模型。要么完整成功，要么返回错误且不产生半初始化的模型。
func Load(ctx context.Context, path string, opts ...Option) (*SlimMSE, error) {
	logs.Init()

	m := &SlimMSE{workers: defaultWorkers()}
	for _, opt := range opts {
		opt(m)
	}

	store, key, err := m.router.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := persist.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
