package cache

import (
	"errors"
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"github.com/ugorji/go/codec"
)

// 支持的对象编码
const (
	CodecMsgPack = "msgpack"
	CodecJSON    = "json"
)

var errEmptyData = errors.New("nil bytes to decode")

// Codec 缓存对象的编解码,RedisClient.SetObject和GetObject使用
type Codec interface {
	Name() string
	Encode(obj interface{}) ([]byte, error)
	Decode(data []byte, dest interface{}) error
}

// NewCodec 按名称创建Codec,name为空时使用msgpack
func NewCodec(name string) (Codec, error) {
	switch name {
	case "", CodecMsgPack:
		return newMsgPackCodec(), nil
	case CodecJSON:
		return jsonCodec{api: jsoniter.ConfigCompatibleWithStandardLibrary}, nil
	}
	return nil, fmt.Errorf("unsupported codec %q", name)
}

// msgPackCodec 按codec tag编码结构体,比json紧凑,消息快照默认使用
type msgPackCodec struct {
	handle *codec.MsgpackHandle
}

func newMsgPackCodec() *msgPackCodec {
	handle := &codec.MsgpackHandle{WriteExt: true}
	handle.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return &msgPackCodec{handle: handle}
}

func (p *msgPackCodec) Name() string {
	return CodecMsgPack
}

func (p *msgPackCodec) Encode(obj interface{}) (bytes []byte, err error) {
	err = codec.NewEncoderBytes(&bytes, p.handle).Encode(obj)
	return
}

func (p *msgPackCodec) Decode(data []byte, dest interface{}) error {
	if len(data) == 0 {
		return errEmptyData
	}
	return codec.NewDecoderBytes(data, p.handle).Decode(dest)
}

// jsonCodec 按json tag编码,便于用redis-cli直接查看快照
type jsonCodec struct {
	api jsoniter.API
}

func (p jsonCodec) Name() string {
	return CodecJSON
}

func (p jsonCodec) Encode(obj interface{}) ([]byte, error) {
	return p.api.Marshal(obj)
}

func (p jsonCodec) Decode(data []byte, dest interface{}) error {
	if len(data) == 0 {
		return errEmptyData
	}
	return p.api.Unmarshal(data, dest)
}
