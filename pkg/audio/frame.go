package audio

import "encoding/binary"

// Kind classifies the audio content of a frame.
type Kind uint8

const (
	KindMixed       Kind = 0 // all participants mixed into one channel
	KindParticipant Kind = 1 // a single participant's channel
	KindShare       Kind = 2 // shared-content audio
)

func (k Kind) String() string {
	switch k {
	case KindMixed:
		return "mixed"
	case KindParticipant:
		return "participant"
	case KindShare:
		return "share"
	default:
		return "unknown"
	}
}

// Frame is one chunk of PCM audio (S16LE) emitted by a platform adapter.
type Frame struct {
	Kind      Kind   `json:"kind"`
	SpeakerID string `json:"speaker_id,omitempty"`
	Timestamp int64  `json:"timestamp"` // unix nanoseconds at capture
	Data      []byte `json:"data"`
}

// fixed part of the wire header: kind (1) + timestamp (8) + speaker length (2)
const frameHeaderSize = 1 + 8 + 2

// EncodedSize returns the number of bytes Encode will produce.
func (f *Frame) EncodedSize() int {
	return frameHeaderSize + len(f.SpeakerID) + len(f.Data)
}

// Encode serializes the frame for WebSocket transmission.
func (f *Frame) Encode() []byte {
	buf := make([]byte, f.EncodedSize())
	f.EncodeTo(buf)
	return buf
}

// EncodeTo serializes the frame into buf, which must hold EncodedSize()
// bytes. Pair with the buffer pool on hot paths.
func (f *Frame) EncodeTo(buf []byte) {
	buf[0] = byte(f.Kind)
	binary.LittleEndian.PutUint64(buf[1:9], uint64(f.Timestamp))
	binary.LittleEndian.PutUint16(buf[9:11], uint16(len(f.SpeakerID)))
	copy(buf[frameHeaderSize:], f.SpeakerID)
	copy(buf[frameHeaderSize+len(f.SpeakerID):], f.Data)
}

// DecodeFrame parses a frame produced by Encode. It returns false when the
// buffer is too short to contain a valid frame.
func DecodeFrame(buf []byte) (*Frame, bool) {
	if len(buf) < frameHeaderSize {
		return nil, false
	}
	speakerLen := int(binary.LittleEndian.Uint16(buf[9:11]))
	if len(buf) < frameHeaderSize+speakerLen {
		return nil, false
	}
	return &Frame{
		Kind:      Kind(buf[0]),
		Timestamp: int64(binary.LittleEndian.Uint64(buf[1:9])),
		SpeakerID: string(buf[frameHeaderSize : frameHeaderSize+speakerLen]),
		Data:      buf[frameHeaderSize+speakerLen:],
	}, true
}
