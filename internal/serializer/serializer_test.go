package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lk2023060901/marshal-garden-go/pkg/marshal"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

func newRecord() *marshal.Record {
	r := marshal.NewRecord(2)
	r.Set(marshal.NameKey("name"), "Ada")
	r.Set(marshal.NameKey("age"), 36)
	return r
}

func TestForName(t *testing.T) {
	s, err := ForName("JSON")
	require.NoError(t, err)
	assert.Equal(t, NameJSON, s.Name())

	s, err = ForName("protobuf")
	require.NoError(t, err)
	assert.Equal(t, NameProto, s.Name())

	_, err = ForName("xml")
	assert.ErrorIs(t, err, merr.ErrSerializerUnsupported)
}

func TestJSONKeepsFieldOrder(t *testing.T) {
	data, err := JSONSerializer{}.Marshal([]*marshal.Record{newRecord()})
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Ada","age":36}]`, string(data))

	var decoded []map[string]any
	require.NoError(t, JSONSerializer{}.Unmarshal(data, &decoded))
	assert.Equal(t, "Ada", decoded[0]["name"])

	err = JSONSerializer{}.Unmarshal([]byte("{"), &decoded)
	assert.ErrorIs(t, err, merr.ErrSerializeFailed)
}

func TestProtoRecord(t *testing.T) {
	data, err := ProtoSerializer{}.Marshal(newRecord())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, ProtoSerializer{}.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{"name": "Ada", "age": float64(36)}, decoded)
}

func TestProtoMessage(t *testing.T) {
	msg, err := structpb.NewStruct(map[string]any{"city": "Lagos"})
	require.NoError(t, err)

	data, err := ProtoSerializer{}.Marshal(msg)
	require.NoError(t, err)

	decoded := &structpb.Struct{}
	require.NoError(t, ProtoSerializer{}.Unmarshal(data, decoded))
	assert.Equal(t, "Lagos", decoded.GetFields()["city"].GetStringValue())
}

func TestToStruct(t *testing.T) {
	s, err := ToStruct(newRecord())
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.GetFields()["name"].GetStringValue())
	assert.Equal(t, float64(36), s.GetFields()["age"].GetNumberValue())

	_, err = ToStruct([]int{1})
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}
