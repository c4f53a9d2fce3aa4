package serializer

import (
	"github.com/lk2023060901/marshal-garden-go/internal/json"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

// JSONSerializer 基于 internal/json（bytedance/sonic）实现。
// *marshal.Record 自带 MarshalJSON，字段顺序与描述符顺序一致。
type JSONSerializer struct{}

var _ Serializer = (*JSONSerializer)(nil)

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, merr.WrapErrSerializeFailed(NameJSON, err)
	}
	return data, nil
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return merr.WrapErrSerializeFailed(NameJSON, json.Unmarshal(data, v))
}

func (JSONSerializer) Name() string { return NameJSON }
