package models

import "errors"

// ErrNotFound 记录不存在。调用方通过errors.Is区分
// "没有数据"和"存储故障"，不再把两者都折叠成空结果。
// 放在models里是因为存储层和HTTP错误映射都要引用它。
var ErrNotFound = errors.New("record not found")
