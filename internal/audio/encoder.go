package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// MIMEType is the content type of clips produced by EncodeMP3.
const MIMEType = "audio/mpeg"

// EncodeMP3 encodes mono S16LE pcm to MP3 frames written to w. Empty pcm
// writes nothing. A trailing odd byte is dropped.
func EncodeMP3(pcm []byte, cfg EncoderConfig, w io.Writer) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid encoder config: %w", err)
	}

	if len(pcm) < 2 {
		return nil
	}

	// shine-mp3 mis-advances its input for mono, so it always gets stereo.
	enc := mp3encoder.NewEncoder(cfg.SampleRate, 2)

	batches := 0
	for off := 0; off < len(pcm); off += cfg.BatchBytes {
		end := min(off+cfg.BatchBytes, len(pcm))

		if err := enc.Write(w, monoToStereo(BytesToInt16(pcm[off:end]))); err != nil {
			return fmt.Errorf("failed to encode audio to MP3: %w", err)
		}
		batches++
	}

	slog.Debug("encoded mp3", "pcmBytes", len(pcm), "batches", batches)

	return nil
}

func monoToStereo(mono []int16) []int16 {
	stereo := make([]int16, len(mono)*2)
	for i, s := range mono {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}

	return stereo
}

// BytesToInt16 converts S16LE bytes to samples. A trailing odd byte is ignored.
func BytesToInt16(data []byte) []int16 {
	n := len(data) / 2
	if n == 0 {
		return nil
	}

	samples := make([]int16, n)
	for i := range n {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	return samples
}
