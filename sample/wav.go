// Package sample читает и пишет файлы записанных сэмплов для CLI-утилит:
// по записи с диска можно прогнать ровно то извлечение признаков,
// что шло при сборе обучающих данных.
package sample

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// WriteWAV сохраняет моно float32 сэмплы как PCM16 WAV
func WriteWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer f.Close()

	dataSize := uint32(len(samples) * 2)
	byteRate := uint32(sampleRate * 2)

	// RIFF header
	f.WriteString("RIFF")
	binary.Write(f, binary.LittleEndian, uint32(36+dataSize))
	f.WriteString("WAVE")

	// fmt chunk
	f.WriteString("fmt ")
	binary.Write(f, binary.LittleEndian, uint32(16))
	binary.Write(f, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(f, binary.LittleEndian, uint16(1)) // mono
	binary.Write(f, binary.LittleEndian, uint32(sampleRate))
	binary.Write(f, binary.LittleEndian, byteRate)
	binary.Write(f, binary.LittleEndian, uint16(2))  // block align
	binary.Write(f, binary.LittleEndian, uint16(16)) // bits per sample

	// data chunk
	f.WriteString("data")
	binary.Write(f, binary.LittleEndian, dataSize)

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(clamp(s) * 32767)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	if _, err := f.Write(pcm); err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	return nil
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// ReadWAV читает PCM16 WAV и возвращает моно float32 сэмплы
// (стерео сводится усреднением каналов) и частоту дискретизации
func ReadWAV(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return nil, 0, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a WAV file")
	}

	var sampleRate int
	var channels, bitsPerSample int

	// Идём по чанкам до data
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			return nil, 0, fmt.Errorf("data chunk not found: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			fmtData := make([]byte, size)
			if _, err := io.ReadFull(f, fmtData); err != nil {
				return nil, 0, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(fmtData[0:2])
			if format != 1 {
				return nil, 0, fmt.Errorf("unsupported WAV format %d, want PCM", format)
			}
			channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			if bitsPerSample != 16 {
				return nil, 0, fmt.Errorf("unsupported bit depth %d, want 16", bitsPerSample)
			}

		case "data":
			if channels == 0 {
				return nil, 0, fmt.Errorf("data chunk before fmt chunk")
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(f, pcm); err != nil {
				return nil, 0, fmt.Errorf("failed to read PCM data: %w", err)
			}
			frames := len(pcm) / (2 * channels)
			out := make([]float32, frames)
			for i := 0; i < frames; i++ {
				var sum float32
				for c := 0; c < channels; c++ {
					v := int16(binary.LittleEndian.Uint16(pcm[(i*channels+c)*2:]))
					sum += float32(v) / 32768.0
				}
				out[i] = sum / float32(channels)
			}
			return out, sampleRate, nil

		default:
			// Пропускаем посторонние чанки (LIST, fact и т.п.)
			if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
				return nil, 0, fmt.Errorf("failed to skip chunk %s: %w", id, err)
			}
		}
	}
}
