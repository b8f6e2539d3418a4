// 交互消息的去向
package output

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
)

// Recorder 在内存中记录所有交互消息
type Recorder struct {
	interactions []entity.Interaction
}

func NewRecorder() *Recorder {
	return &Recorder{interactions: make([]entity.Interaction, 0)}
}

func (r *Recorder) Trigger(ia entity.Interaction) error {
	r.interactions = append(r.interactions, ia)
	return nil
}

// All 按发送顺序返回所有消息
func (r *Recorder) All() []entity.Interaction {
	return r.interactions
}

// ByType 返回指定类型的消息
func (r *Recorder) ByType(t entity.InteractionType) []entity.Interaction {
	return lo.Filter(r.interactions, func(ia entity.Interaction, _ int) bool {
		return ia.Type() == t
	})
}

// Count 指定类型的消息数量
func (r *Recorder) Count(t entity.InteractionType) int {
	return lo.CountBy(r.interactions, func(ia entity.Interaction) bool {
		return ia.Type() == t
	})
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.interactions = r.interactions[:0]
}

// Multi 将消息依次发给多个去向
// 说明：任一去向失败即停止并返回该错误
type Multi []entity.IEmitter

func (m Multi) Trigger(ia entity.Interaction) error {
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Trigger(ia); err != nil {
			return err
		}
	}
	return nil
}
