package pegparser

import (
	"bytes"
	"encoding/json"
	"strings"
)

type IterateActionType = int8

const (
	IterateActionContinue IterateActionType = iota
	IterateActionBreak
)

// CommentKeySuffix marks the sibling key holding the inline comment of an
// entry: `fileRef = 1D30AB11 /* Foundation.framework */;` is stored as
// fileRef and fileRef_comment.
const CommentKeySuffix = "_comment"

func CommentKey(key string) string {
	return key + CommentKeySuffix
}

func IsCommentKey(key string) bool {
	return strings.HasSuffix(key, CommentKeySuffix)
}

type ObjectItem = SliceItem

type Object struct {
	*SliceMap
}

type ObjectWithUUID struct {
	Object
	UUID string
}

func NewObjectItem(key string, value interface{}) ObjectItem {
	return SliceItem{key, value}
}

func NewObject() Object {
	return Object{
		SliceMap: NewSliceMap(),
	}
}

func NewObjectWithData(items []ObjectItem) Object {
	o := NewObject()
	for _, item := range items {
		o.Set(item.key, item.data)
	}

	return o
}

// MarshalJSON encodes the entries in their stored order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	var err error
	buf.WriteByte('{')
	o.Foreach(func(key string, val interface{}) IterateActionType {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if err = encodeJSON(&buf, key); err != nil {
			return IterateActionBreak
		}
		buf.WriteByte(':')
		if err = encodeJSON(&buf, val); err != nil {
			return IterateActionBreak
		}
		return IterateActionContinue
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON appends v without HTML escaping, so "<group>" stays readable.
func encodeJSON(buf *bytes.Buffer, v interface{}) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func (o Object) IsEmpty() bool {
	if o.SliceMap == nil || o.sl == nil {
		return true
	}
	return o.Size() == 0
}

func (o Object) Get(key interface{}) (interface{}, bool) {
	if o.SliceMap == nil {
		return nil, false
	}
	return o.SliceMap.Get(key)
}

func (o Object) ForceGet(key interface{}) interface{} {
	v, _ := o.Get(key)
	return v
}

// GetObject returns the nested object under key, or an empty detached
// object when the key is missing or holds something else.
func (o Object) GetObject(key string) Object {
	if value, ok := o.Get(key); ok {
		if obj, ok := value.(Object); ok {
			return obj
		}
	}
	return NewObject()
}

func (o Object) GetArray(key string) []interface{} {
	if value, ok := o.Get(key); ok {
		if list, ok := value.([]interface{}); ok {
			return list
		}
	}
	return nil
}

func (o Object) GetString(key string) string {
	if value, ok := o.Get(key); ok {
		switch v := value.(type) {
		case string:
			return v
		default:
			return ""
		}
	}
	return ""
}

type ApplyFunc = func(key string, val interface{}) IterateActionType
type FilterFunc = func(key string, val interface{}) bool

func (o Object) Foreach(apply ApplyFunc) {
	if o.IsEmpty() {
		return
	}
	for _, item := range o.Items() {
		if item.data == nil {
			continue
		}
		action := apply(item.key.(string), item.data)
		if action == IterateActionBreak {
			break
		}
	}
}

func (o Object) ForeachWithFilter(apply ApplyFunc, filter FilterFunc) {
	if o.IsEmpty() {
		return
	}
	for _, item := range o.Items() {
		key := item.key.(string)
		val := item.data
		if val == nil {
			continue
		}
		if filter(key, val) {
			action := apply(key, val)
			if action == IterateActionBreak {
				break
			}
		}
	}
}
