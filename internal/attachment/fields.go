// ABOUTME: Ordered derived-field view rendered for logs and JSON export
// ABOUTME: Absent values keep their key with a nil value

package attachment

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap/zapcore"
)

// Field is one derived accessor and its current value.
type Field struct {
	Name  string
	Value any
}

// Fields is the serialized view of an attachment, in a fixed key order.
type Fields []Field

// Keys returns the field names in order.
func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Name
	}
	return keys
}

// Get returns the value stored under name. A listed key with an absent
// value returns (nil, true).
func (f Fields) Get(name string) (any, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the fields as an object, preserving order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalLogObject lets the view be logged with zap.Object.
func (f Fields) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, field := range f {
		if err := enc.AddReflected(field.Name, field.Value); err != nil {
			return err
		}
	}
	return nil
}

// opt turns a (value, ok) accessor result into a field value.
func opt[T any](v T, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// marshalAttachment renders identity, fill state and derived fields.
func marshalAttachment(a Attachment) ([]byte, error) {
	head := Fields{
		{Name: "kind", Value: a.Kind()},
		{Name: "ownerId", Value: a.OwnerID()},
		{Name: "id", Value: a.ID()},
		{Name: "accessKey", Value: opt(a.AccessKey(), a.AccessKey() != "")},
		{Name: "filled", Value: a.IsFilled()},
	}
	return append(head, a.Serialize()...).MarshalJSON()
}
