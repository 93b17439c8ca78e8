package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Length returns a WAV file's duration in seconds without decoding samples.
func Length(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dur, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return dur.Seconds(), nil
}

// DecodeStereo16 decodes a WAV file to interleaved stereo 16-bit samples.
// Mono input is duplicated to both channels; extra channels are dropped.
func DecodeStereo16(path string) ([]int16, int, error) {
	buf, err := decodePCM(path)
	if err != nil {
		return nil, 0, err
	}
	ch := buf.Format.NumChannels
	if ch < 1 {
		return nil, 0, fmt.Errorf("%s: no channels", filepath.Base(path))
	}
	depth := buf.SourceBitDepth
	frames := len(buf.Data) / ch
	out := make([]int16, 0, frames*2)
	for i := 0; i < frames; i++ {
		left := toInt16(buf.Data[i*ch], depth)
		right := left
		if ch > 1 {
			right = toInt16(buf.Data[i*ch+1], depth)
		}
		out = append(out, left, right)
	}
	return out, buf.Format.SampleRate, nil
}

func decodePCM(path string) (*audio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(dec.BitDepth)
	}
	return buf, nil
}

func toInt16(v, depth int) int16 {
	switch {
	case depth == 8:
		return int16((v - 128) << 8) // 8-bit WAV is unsigned
	case depth == 16:
		return int16(v)
	case depth == 24:
		return int16(v >> 8)
	case depth >= 32:
		return int16(v >> 16)
	}
	return int16(v)
}

// Monitor strip sample rate. The strip renders a couple of terminal rows,
// so 8 kHz resolves everything it can draw.
const waveformRate = 8000

// EnsureWaveformFile downmixes audioPath to a small mono WAV the waveform
// strip can window quickly, cached under projectDir/waveforms. Returns the
// absolute path of the cached file, reusing it when it already exists.
func EnsureWaveformFile(audioPath, projectDir string) (string, error) {
	waveDir := filepath.Join(projectDir, "waveforms")
	if err := os.MkdirAll(waveDir, 0o755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outPath, err := filepath.Abs(filepath.Join(waveDir, base+"_waveform.wav"))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(outPath); err == nil {
		return outPath, nil
	}

	buf, err := decodePCM(audioPath)
	if err != nil {
		return "", err
	}
	ch := buf.Format.NumChannels
	if ch < 1 {
		return "", fmt.Errorf("%s: no channels", filepath.Base(audioPath))
	}
	frames := len(buf.Data) / ch
	step := buf.Format.SampleRate / waveformRate
	if step < 1 {
		step = 1
	}

	mono := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: buf.Format.SampleRate / step},
		SourceBitDepth: 16,
	}
	for i := 0; i < frames; i += step {
		sum := 0
		for c := 0; c < ch; c++ {
			sum += int(toInt16(buf.Data[i*ch+c], buf.SourceBitDepth))
		}
		mono.Data = append(mono.Data, sum/ch)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	enc := wav.NewEncoder(out, mono.Format.SampleRate, 16, 1, 1)
	if err := enc.Write(mono); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("writing waveform file: %w", err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}
