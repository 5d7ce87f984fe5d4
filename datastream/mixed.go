package datastream

import (
	"fmt"
	randv2 "math/rand/v2"
)

// MixedStream 依 picker 產生混合操作：
//   - key 目前不在表中則 Insert
//   - 否則以 deleteRatio 的機率 Delete，其餘為 Search
//
// 因此 Search 與 Delete 只會出現在該 key 插入之後。
type MixedStream struct {
	picker      KeyPicker
	deleteRatio float64
	rng         *randv2.Rand
	present     map[string]bool
}

func NewMixedStream(picker KeyPicker, deleteRatio float64, seed uint64) (*MixedStream, error) {
	if deleteRatio < 0.0 || deleteRatio > 1.0 {
		return nil, fmt.Errorf("datastream: deleteRatio (%v) must be between 0.0 and 1.0", deleteRatio)
	}
	return &MixedStream{
		picker:      picker,
		deleteRatio: deleteRatio,
		rng:         randv2.New(randv2.NewPCG(seed, 1)),
		present:     make(map[string]bool),
	}, nil
}

func (m *MixedStream) Next() Operation {
	key := m.picker.Pick()
	if !m.present[key] {
		m.present[key] = true
		return Operation{Type: OpInsert, Key: key, Value: key}
	}
	if m.rng.Float64() < m.deleteRatio {
		m.present[key] = false
		return Operation{Type: OpDelete, Key: key}
	}
	return Operation{Type: OpSearch, Key: key}
}

// Sequence 產生 k 筆操作並包成可重播的 SequenceModel
func (m *MixedStream) Sequence(k int) *SequenceModel {
	ops := make([]Operation, k)
	for i := range ops {
		ops[i] = m.Next()
	}
	return &SequenceModel{ops: ops}
}

// Live 回傳目前仍應存在的 key 數量
func (m *MixedStream) Live() int {
	n := 0
	for _, ok := range m.present {
		if ok {
			n++
		}
	}
	return n
}
