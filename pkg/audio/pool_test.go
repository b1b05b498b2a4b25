package audio

import "testing"

func TestBufferPoolReusesAndGrows(t *testing.T) {
	pool := NewBufferPool(16)

	small := pool.Get(8)
	if len(small) != 8 {
		t.Errorf("Get(8) returned %d bytes", len(small))
	}
	pool.Put(small)

	large := pool.Get(64)
	if len(large) != 64 {
		t.Errorf("Get(64) returned %d bytes", len(large))
	}
}

func TestEncodeToMatchesEncode(t *testing.T) {
	frame := Frame{Kind: KindParticipant, SpeakerID: "u1", Timestamp: 5, Data: []byte{1, 2}}

	buf := GetBuffer(frame.EncodedSize())
	defer PutBuffer(buf)
	frame.EncodeTo(buf)

	direct := frame.Encode()
	if string(buf) != string(direct) {
		t.Errorf("EncodeTo produced %v, Encode produced %v", buf, direct)
	}
}
