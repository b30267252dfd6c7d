package cookiemap

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the compact message layout.
//
//	CookiesMap  { 1 updateTime, 2 createTime, 3 repeated entry{1 key, 2 DomainEntry} }
//	DomainEntry { 1 updateTime, 2 createTime, 3 repeated Cookie, 4 repeated {1 key, 2 value} }
//	Cookie      { 1 name, 2 value, 3 domain, 4 path, 5 secure, 6 httpOnly,
//	              7 sameSite, 8 expirationDate (double), 9 session }
const (
	fUpdateTime protowire.Number = 1
	fCreateTime protowire.Number = 2
	fDomains    protowire.Number = 3
	fCookies    protowire.Number = 3
	fItems      protowire.Number = 4

	fMapKey   protowire.Number = 1
	fMapValue protowire.Number = 2

	fName     protowire.Number = 1
	fValue    protowire.Number = 2
	fDomain   protowire.Number = 3
	fPath     protowire.Number = 4
	fSecure   protowire.Number = 5
	fHTTPOnly protowire.Number = 6
	fSameSite protowire.Number = 7
	fExpires  protowire.Number = 8
	fSession  protowire.Number = 9
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var (
	zenc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	zdec, _ = zstd.NewReader(nil)
)

func encodeCompact(m *CookiesMap) string {
	raw := marshalMap(m)
	return base64.StdEncoding.EncodeToString(zenc.EncodeAll(raw, nil))
}

// decodeCompact also accepts an uncompressed protobuf payload, which is
// what clients without compression support write.
func decodeCompact(blob string) (*CookiesMap, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(raw, zstdMagic) {
		raw, err = zdec.DecodeAll(raw, nil)
		if err != nil {
			return nil, err
		}
	}
	return unmarshalMap(raw)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func marshalMap(m *CookiesMap) []byte {
	var b []byte
	b = appendInt(b, fUpdateTime, m.UpdateTime)
	b = appendInt(b, fCreateTime, m.CreateTime)
	keys := make([]string, 0, len(m.DomainCookieMap))
	for k := range m.DomainCookieMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var kv []byte
		kv = protowire.AppendTag(kv, fMapKey, protowire.BytesType)
		kv = protowire.AppendString(kv, k)
		kv = appendMessage(kv, fMapValue, marshalEntry(m.DomainCookieMap[k]))
		b = appendMessage(b, fDomains, kv)
	}
	return b
}

func marshalEntry(e *DomainEntry) []byte {
	var b []byte
	if e == nil {
		return b
	}
	b = appendInt(b, fUpdateTime, e.UpdateTime)
	b = appendInt(b, fCreateTime, e.CreateTime)
	for _, c := range e.Cookies {
		b = appendMessage(b, fCookies, marshalCookie(c))
	}
	for _, it := range e.LocalStorageItems {
		var kv []byte
		kv = appendString(kv, fMapKey, it.Key)
		kv = appendString(kv, fMapValue, it.Value)
		b = appendMessage(b, fItems, kv)
	}
	return b
}

func marshalCookie(c Cookie) []byte {
	var b []byte
	b = appendString(b, fName, c.Name)
	b = appendString(b, fValue, c.Value)
	b = appendString(b, fDomain, c.Domain)
	b = appendString(b, fPath, c.Path)
	b = appendBool(b, fSecure, c.Secure)
	b = appendBool(b, fHTTPOnly, c.HTTPOnly)
	b = appendString(b, fSameSite, c.SameSite)
	if c.ExpirationDate != 0 {
		b = protowire.AppendTag(b, fExpires, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(c.ExpirationDate))
	}
	b = appendBool(b, fSession, c.Session)
	return b
}

var errWireType = errors.New("unexpected wire type")

// walk calls fn for each field of a message. fn returns the number of
// bytes it consumed, or -1 to let walk skip the field.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		used, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		if used < 0 {
			used = protowire.ConsumeFieldValue(num, typ, b)
			if used < 0 {
				return protowire.ParseError(used)
			}
		}
		b = b[used:]
	}
	return nil
}

func consumeInt(typ protowire.Type, b []byte, dst *int64) (int, error) {
	if typ != protowire.VarintType {
		return 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = int64(v)
	return n, nil
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	if typ != protowire.VarintType {
		return 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = protowire.DecodeBool(v)
	return n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	v, n, err := consumeBytes(typ, b)
	if err != nil {
		return 0, err
	}
	*dst = string(v)
	return n, nil
}

func unmarshalMap(raw []byte) (*CookiesMap, error) {
	m := &CookiesMap{}
	err := walk(raw, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fUpdateTime:
			return consumeInt(typ, b, &m.UpdateTime)
		case fCreateTime:
			return consumeInt(typ, b, &m.CreateTime)
		case fDomains:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			key, entry, err := unmarshalMapEntry(v)
			if err != nil {
				return 0, err
			}
			if m.DomainCookieMap == nil {
				m.DomainCookieMap = make(map[string]*DomainEntry)
			}
			m.DomainCookieMap[key] = entry
			return n, nil
		}
		return -1, nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func unmarshalMapEntry(raw []byte) (string, *DomainEntry, error) {
	var key string
	entry := &DomainEntry{}
	err := walk(raw, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fMapKey:
			return consumeString(typ, b, &key)
		case fMapValue:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			entry, err = unmarshalEntry(v)
			return n, err
		}
		return -1, nil
	})
	return key, entry, err
}

func unmarshalEntry(raw []byte) (*DomainEntry, error) {
	e := &DomainEntry{}
	err := walk(raw, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fUpdateTime:
			return consumeInt(typ, b, &e.UpdateTime)
		case fCreateTime:
			return consumeInt(typ, b, &e.CreateTime)
		case fCookies:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			c, err := unmarshalCookie(v)
			if err != nil {
				return 0, err
			}
			e.Cookies = append(e.Cookies, c)
			return n, nil
		case fItems:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var it LocalStorageItem
			err = walk(v, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				switch num {
				case fMapKey:
					return consumeString(typ, b, &it.Key)
				case fMapValue:
					return consumeString(typ, b, &it.Value)
				}
				return -1, nil
			})
			if err != nil {
				return 0, err
			}
			e.LocalStorageItems = append(e.LocalStorageItems, it)
			return n, nil
		}
		return -1, nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func unmarshalCookie(raw []byte) (Cookie, error) {
	var c Cookie
	err := walk(raw, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fName:
			return consumeString(typ, b, &c.Name)
		case fValue:
			return consumeString(typ, b, &c.Value)
		case fDomain:
			return consumeString(typ, b, &c.Domain)
		case fPath:
			return consumeString(typ, b, &c.Path)
		case fSecure:
			return consumeBool(typ, b, &c.Secure)
		case fHTTPOnly:
			return consumeBool(typ, b, &c.HTTPOnly)
		case fSameSite:
			return consumeString(typ, b, &c.SameSite)
		case fExpires:
			if typ != protowire.Fixed64Type {
				return 0, errWireType
			}
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			c.ExpirationDate = math.Float64frombits(v)
			return n, nil
		case fSession:
			return consumeBool(typ, b, &c.Session)
		}
		return -1, nil
	})
	return c, err
}
