// Package nativehost implements the native messaging host that connects
// the browser extension to the daemon. Messages use the Chrome/Firefox
// framing: a 4-byte little-endian length prefix followed by JSON.
package nativehost

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

const (
	// MaxMessageSize is the browser's limit for messages sent by the host.
	MaxMessageSize = 1 << 20
	// MaxIncomingSize bounds messages read from the extension.
	MaxIncomingSize = 64 << 20
)

// Message types.
const (
	// TypeRequest is a daemon method call made by the extension. It is the
	// default when Type is empty.
	TypeRequest = "request"
	// TypeResponse answers a TypeRequest.
	TypeResponse = "response"
	// TypeCallback is a browser call made by the daemon, relayed to the
	// extension.
	TypeCallback = "callback"
	// TypeCallbackResult is the extension's answer to a TypeCallback.
	TypeCallbackResult = "callbackResult"
	// TypeLog carries a daemon log notification.
	TypeLog = "log"
)

// Request is a message from the extension.
type Request struct {
	ID      int             `json:"id"`
	Type    string          `json:"type,omitempty"`
	Method  string          `json:"method,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	// Ok and Error are set on TypeCallbackResult.
	Ok    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// Response is a message to the extension.
type Response struct {
	ID     int    `json:"id"`
	Type   string `json:"type"`
	Method string `json:"method,omitempty"`
	Ok     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

// ReadMessage reads one length-prefixed message.
func ReadMessage(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	if length > MaxIncomingSize {
		return nil, fmt.Errorf("message too large: %d bytes (max %d)", length, MaxIncomingSize)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteMessage writes one length-prefixed message.
func WriteMessage(w io.Writer, msg []byte) error {
	if len(msg) > MaxMessageSize {
		return fmt.Errorf("message too large: %d bytes (max %d)", len(msg), MaxMessageSize)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(msg))); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}

// ParseRequest parses a JSON byte slice into a Request.
func ParseRequest(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.Type == "" {
		r.Type = TypeRequest
	}
	return &r, nil
}

// MakeSuccessResponse creates a JSON-encoded success response.
func MakeSuccessResponse(id int, result any) []byte {
	b, _ := json.Marshal(Response{ID: id, Type: TypeResponse, Ok: true, Result: result})
	return b
}

// MakeErrorResponse creates a JSON-encoded error response.
func MakeErrorResponse(id int, err error) []byte {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	b, _ := json.Marshal(Response{ID: id, Type: TypeResponse, Error: msg})
	return b
}
