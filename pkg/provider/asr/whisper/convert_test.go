package whisper

import (
	"encoding/binary"
	"math"
	"testing"
)

// buildWAV assembles a minimal RIFF/WAVE file around the given 16-bit PCM
// payload.
func buildWAV(t *testing.T, pcm []byte, channels int, format uint16, bps uint16) []byte {
	t.Helper()

	var fmtChunk [16]byte
	binary.LittleEndian.PutUint16(fmtChunk[0:2], format)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 16000)
	binary.LittleEndian.PutUint32(fmtChunk[8:12], 16000*uint32(channels)*2)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], uint16(channels)*2)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], bps)

	body := make([]byte, 0, 44+len(pcm))
	body = append(body, "WAVE"...)
	body = append(body, "fmt "...)
	body = binary.LittleEndian.AppendUint32(body, 16)
	body = append(body, fmtChunk[:]...)
	body = append(body, "data"...)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(pcm)))
	body = append(body, pcm...)

	out := make([]byte, 0, 8+len(body))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	out = append(out, body...)
	return out
}

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestDecodeWAV(t *testing.T) {
	t.Parallel()

	payload := pcm16(0, 16384, -16384, 32767)
	wav := buildWAV(t, payload, 1, 1, 16)

	pcm, channels, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV: %v", err)
	}
	if channels != 1 {
		t.Errorf("channels = %d, want 1", channels)
	}
	if len(pcm) != len(payload) {
		t.Errorf("pcm length = %d, want %d", len(pcm), len(payload))
	}
}

func TestDecodeWAV_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte("RIFF")},
		{"not riff", append([]byte("JUNKxxxxJUNK"), make([]byte, 40)...)},
		{"float format", buildWAV(t, pcm16(0, 0), 1, 3, 32)},
		{"8-bit depth", buildWAV(t, pcm16(0, 0), 1, 1, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := decodeWAV(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPcmToFloat32(t *testing.T) {
	t.Parallel()

	samples := pcmToFloat32(pcm16(0, 16384, -32768))
	want := []float32{0, 0.5, -1}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if math.Abs(float64(samples[i]-want[i])) > 1e-6 {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestPcmToFloat32Mono_AveragesChannels(t *testing.T) {
	t.Parallel()

	// One stereo frame: left 16384, right -16384 averages to silence.
	samples := pcmToFloat32Mono(pcm16(16384, -16384), 2)
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	if math.Abs(float64(samples[0])) > 1e-6 {
		t.Errorf("samples[0] = %v, want 0", samples[0])
	}
}
