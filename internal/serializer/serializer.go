package serializer

import (
	"strings"

	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

const (
	NameJSON  = "json"
	NameProto = "proto"
)

// Serializer 负责把组装好的记录编码为字节流，以及反向解码。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象，v 通常为指针。
	Unmarshal(data []byte, v any) error

	Name() string
}

// ForName 按名称返回序列化实现，名称不区分大小写。
func ForName(name string) (Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameJSON, "":
		return JSONSerializer{}, nil
	case NameProto, "protobuf":
		return ProtoSerializer{}, nil
	default:
		return nil, merr.WrapErrSerializerUnsupported(name)
	}
}
