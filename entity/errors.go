package entity

import (
	"errors"
	"fmt"
)

// ErrFederate 交互消息投递失败
// 说明：所有投递失败都可以通过errors.Is(err, ErrFederate)识别，调用方应中止运行
var ErrFederate = errors.New("internal federate error")

// FederateError 交互消息投递失败的错误类型
type FederateError struct {
	Type InteractionType // 消息类型
	Name string          // 相关单元名
	Err  error           // 发送方返回的原始错误
}

func NewFederateError(ia Interaction, err error) *FederateError {
	return &FederateError{
		Type: ia.Type(),
		Name: unitName(ia),
		Err:  err,
	}
}

func (e *FederateError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%v: couldn't send %s for %s: %v", ErrFederate, e.Type, e.Name, e.Err)
	}
	return fmt.Sprintf("%v: couldn't send %s: %v", ErrFederate, e.Type, e.Err)
}

func (e *FederateError) Unwrap() []error {
	return []error{ErrFederate, e.Err}
}

func unitName(ia Interaction) string {
	if r, ok := ia.(interface{ UnitName() string }); ok {
		return r.UnitName()
	}
	return ""
}
