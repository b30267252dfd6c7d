package cookiemap

import (
	"fmt"

	"github.com/Filatest/sync-your-cookie/pkg/logger"
	"github.com/Filatest/sync-your-cookie/pkg/syncerr"
)

// Encoding selects the wire form of a CookiesMap blob.
type Encoding int

const (
	// EncodingJSON is the plain JSON document.
	EncodingJSON Encoding = iota
	// EncodingCompact is base64 of a zstd compressed protobuf message.
	EncodingCompact
)

// EncodingFor maps the protobufEncoding setting onto an Encoding.
func EncodingFor(protobufEncoding bool) Encoding {
	if protobufEncoding {
		return EncodingCompact
	}
	return EncodingJSON
}

func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingCompact:
		return "compact"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Encode serializes m to its wire string.
func Encode(m *CookiesMap, enc Encoding) (string, error) {
	if m == nil {
		m = Empty()
	}
	switch enc {
	case EncodingJSON:
		return encodeJSON(m)
	case EncodingCompact:
		return encodeCompact(m), nil
	default:
		return "", fmt.Errorf("cookiemap: unknown encoding %d", int(enc))
	}
}

// DecodeStrict parses blob and reports malformed input as a DecodeError.
// An empty blob decodes to an empty map.
func DecodeStrict(blob string, enc Encoding) (*CookiesMap, error) {
	if blob == "" {
		return Empty(), nil
	}
	var (
		m   *CookiesMap
		err error
	)
	switch enc {
	case EncodingJSON:
		m, err = decodeJSON(blob)
	case EncodingCompact:
		m, err = decodeCompact(blob)
	default:
		err = fmt.Errorf("unknown encoding %d", int(enc))
	}
	if err != nil {
		return nil, &syncerr.Error{Code: syncerr.DecodeError, Message: "decode " + enc.String() + ": " + err.Error(), Err: err}
	}
	return m, nil
}

// Decode parses blob and never fails: malformed input is logged and
// yields an empty map.
func Decode(blob string, enc Encoding, l logger.Logger) *CookiesMap {
	m, err := DecodeStrict(blob, enc)
	if err != nil {
		if l != nil {
			l.Warning("cookiemap: %v, using empty map", err)
		}
		return Empty()
	}
	return m
}
