package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Delimiter terminates every frame on the wire.
const Delimiter = '\n'

// envelope is the on-the-wire shape of every message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Encode serializes a message as one delimiter-terminated JSON frame.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.MessageType(), err)
	}
	frame, err := json.Marshal(envelope{Type: msg.MessageType(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", msg.MessageType(), err)
	}
	return append(frame, Delimiter), nil
}

// Decode parses every complete frame in buf and returns the bytes after the last
// delimiter. Frames that fail to parse or carry an unknown type are dropped.
// When buf holds no delimiter it is returned unchanged.
func Decode(buf []byte) ([]Message, []byte) {
	var msgs []Message
	for {
		i := bytes.IndexByte(buf, Delimiter)
		if i < 0 {
			return msgs, buf
		}
		if msg, err := decodeFrame(buf[:i]); err == nil {
			msgs = append(msgs, msg)
		}
		buf = buf[i+1:]
	}
}

func decodeFrame(frame []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, err
	}
	return decodeData(env.Type, env.Data)
}

// FrameDecoder keeps the carry-over bytes between reads of a stream.
type FrameDecoder struct {
	buf []byte
}

// Feed appends p and returns every message it completed.
func (d *FrameDecoder) Feed(p []byte) []Message {
	d.buf = append(d.buf, p...)
	msgs, rest := Decode(d.buf)
	d.buf = append(d.buf[:0], rest...)
	return msgs
}

// Buffered is the number of bytes waiting for a delimiter.
func (d *FrameDecoder) Buffered() int {
	return len(d.buf)
}

// WriteMessage encodes msg and writes the frame to w in one call.
func WriteMessage(w io.Writer, msg Message) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadMessages reads r until it fails, handing each decoded message to fn in
// arrival order. It returns the read error (io.EOF on a clean close), or nil
// once fn returns false.
func ReadMessages(r io.Reader, fn func(Message) bool) error {
	var dec FrameDecoder
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			for _, msg := range dec.Feed(chunk[:n]) {
				if !fn(msg) {
					return nil
				}
			}
		}
		if err != nil {
			return err
		}
	}
}
