package sample

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// ReadMP3 декодирует MP3 на чистом Go и возвращает моно float32 сэмплы
// (go-mp3 всегда отдаёт стерео, каналы усредняются) и частоту дискретизации
func ReadMP3(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read PCM data: %w", err)
	}

	// signed 16-bit stereo interleaved, 4 байта на пару сэмплов
	frames := len(pcm) / 4
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*4+2:]))
		out[i] = (float32(l) + float32(r)) / 2 / 32768.0
	}
	return out, decoder.SampleRate(), nil
}
