package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBufferAppendOrder(t *testing.T) {
	b := NewBuffer(0)

	for _, chunk := range [][]byte{{1, 2}, {3}, {4, 5, 6}} {
		if err := b.Append(chunk); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	if b.ChunkCount() != 3 {
		t.Errorf("ChunkCount() = %d, want 3", b.ChunkCount())
	}
	if b.Len() != 6 {
		t.Errorf("Len() = %d, want 6", b.Len())
	}
	if got := b.Bytes(); !bytes.Equal(got, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("Bytes() = %v, chunks must concatenate in arrival order", got)
	}
}

func TestBufferCopiesChunks(t *testing.T) {
	b := NewBuffer(0)
	chunk := []byte{1, 2, 3}
	b.Append(chunk)
	chunk[0] = 99

	if got := b.Bytes(); got[0] != 1 {
		t.Error("Append() must copy the chunk, not alias it")
	}
}

func TestBufferCap(t *testing.T) {
	b := NewBuffer(4)

	if err := b.Append([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Append() within cap error = %v", err)
	}
	if err := b.Append([]byte{4, 5}); err == nil {
		t.Error("Append() beyond cap should fail")
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, rejected chunk must not be buffered", b.Len())
	}
}

func TestBufferReset(t *testing.T) {
	b := NewBuffer(0)
	b.Append([]byte{1, 2, 3})
	b.Reset()

	if b.Len() != 0 || b.ChunkCount() != 0 {
		t.Error("Reset() should discard all buffered audio")
	}
	if len(b.Bytes()) != 0 {
		t.Error("Bytes() after Reset() should be empty")
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 320)
	wav := EncodeWAV(pcm, DefaultFormat)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("len = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}

	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	if sampleRate != uint32(DefaultFormat.SampleRate) {
		t.Errorf("sample rate = %d, want %d", sampleRate, DefaultFormat.SampleRate)
	}
	dataSize := binary.LittleEndian.Uint32(wav[40:44])
	if dataSize != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", dataSize, len(pcm))
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Error("PCM payload mismatch")
	}
}
