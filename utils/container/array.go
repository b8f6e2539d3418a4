package container

// Array 支持轮询时安全删除元素的数组
// 功能：保存一组按加入顺序排列的活跃元素，在一次遍历中完成轮询与删除
// 说明：删除采用原地压缩，不会在遍历过程中修改尚未访问的元素，元素相对顺序保持不变
type Array[T any] struct {
	data []T // 主数据数组
}

// NewArray 创建数组
func NewArray[T any]() *Array[T] {
	return &Array[T]{
		data: make([]T, 0),
	}
}

// Len 获取当前数组长度
func (a *Array[T]) Len() int {
	return len(a.data)
}

// Data 获取原始数据
// 说明：返回的切片与数组共享底层存储，调用方不应修改
func (a *Array[T]) Data() []T {
	return a.data
}

// Add 增加元素
func (a *Array[T]) Add(values ...T) {
	a.data = append(a.data, values...)
}

// Poll 按顺序轮询所有元素，删除轮询函数返回true的元素
// 功能：对每个元素调用f，f返回true表示该元素已结束、应从数组中删除
// 参数：f-轮询函数
// 返回：被删除的元素数量，第一个错误
// 算法说明：
// 1. 使用写指针w记录下一个保留位置
// 2. 对每个元素调用f，保留的元素移动到w处
// 3. 若f返回错误，该元素与之后未轮询的元素全部保留，立即返回
// 4. 清空尾部多余的槽位，避免保留已删除元素的引用
func (a *Array[T]) Poll(f func(T) (bool, error)) (removed int, err error) {
	w := 0
	i := 0
	for ; i < len(a.data); i++ {
		v := a.data[i]
		done, e := f(v)
		if e != nil {
			err = e
			break
		}
		if done {
			continue
		}
		a.data[w] = v
		w++
	}
	// 出错时保留剩余元素
	for ; i < len(a.data); i++ {
		a.data[w] = a.data[i]
		w++
	}
	var zero T
	for j := w; j < len(a.data); j++ {
		a.data[j] = zero
	}
	removed = len(a.data) - w
	a.data = a.data[:w]
	return
}
