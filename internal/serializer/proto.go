package serializer

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lk2023060901/marshal-garden-go/internal/json"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

// ProtoSerializer 使用 Protobuf 进行二进制序列化。
//
// proto.Message 直接编码；其它对象先经 JSON 转为通用结构，再包装成
// google.protobuf.Value 编码。数字在这一路径上统一变为 float64。
type ProtoSerializer struct{}

var _ Serializer = (*ProtoSerializer)(nil)

func (ProtoSerializer) Marshal(v any) ([]byte, error) {
	if msg, ok := v.(proto.Message); ok {
		data, err := proto.Marshal(msg)
		return data, merr.WrapErrSerializeFailed(NameProto, err)
	}

	pv, err := toValue(v)
	if err != nil {
		return nil, merr.WrapErrSerializeFailed(NameProto, err)
	}
	data, err := proto.Marshal(pv)
	if err != nil {
		return nil, merr.WrapErrSerializeFailed(NameProto, err)
	}
	return data, nil
}

func (ProtoSerializer) Unmarshal(data []byte, v any) error {
	if msg, ok := v.(proto.Message); ok {
		return merr.WrapErrSerializeFailed(NameProto, proto.Unmarshal(data, msg))
	}

	var pv structpb.Value
	if err := proto.Unmarshal(data, &pv); err != nil {
		return merr.WrapErrSerializeFailed(NameProto, err)
	}
	raw, err := json.Marshal(pv.AsInterface())
	if err != nil {
		return merr.WrapErrSerializeFailed(NameProto, err)
	}
	return merr.WrapErrSerializeFailed(NameProto, json.Unmarshal(raw, v))
}

func (ProtoSerializer) Name() string { return NameProto }

// ToStruct 把一条记录（或任意 JSON 对象形态的值）转换为 structpb.Struct。
func ToStruct(v any) (*structpb.Struct, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, merr.WrapErrSerializeFailed(NameProto, err)
	}
	m, ok := generic.(map[string]any)
	if !ok {
		return nil, merr.WrapErrParameterInvalidMsg("expected object, got %T", generic)
	}
	s, err := structpb.NewStruct(m)
	return s, merr.WrapErrSerializeFailed(NameProto, err)
}

func toValue(v any) (*structpb.Value, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	return structpb.NewValue(generic)
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}
