package flake

import "github.com/go-audio/audio"

// PCMSource supplies interleaved PCM blocks to the stream driver. NextBlock
// reads up to n sample frames and returns them de-interleaved into one
// []int32 per channel; a final partial block is shorter than n, and a
// zero-length, nil-error result marks the end of the stream.
type PCMSource interface {
	NextBlock(n int) (channels [][]int32, err error)
	Channels() int
	SampleRate() int
	BitDepth() int
}

// bufferSource adapts anything that can fill a go-audio/audio.IntBuffer
// (chiefly a github.com/go-audio/wav Decoder's PCMBuffer method) to
// PCMSource, de-interleaving each chunk as it is read.
type bufferSource struct {
	read     func(buf *audio.IntBuffer) (int, error)
	format   *audio.Format
	bitDepth int
}

// NewBufferSource wraps read — typically (*wav.Decoder).PCMBuffer — as a
// PCMSource. sampleRate, channels and bitDepth describe the stream read
// reads from; they are not re-derived from read's output.
func NewBufferSource(read func(*audio.IntBuffer) (int, error), sampleRate, channels, bitDepth int) PCMSource {
	return &bufferSource{
		read:     read,
		format:   &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		bitDepth: bitDepth,
	}
}

func (b *bufferSource) Channels() int   { return b.format.NumChannels }
func (b *bufferSource) SampleRate() int { return b.format.SampleRate }
func (b *bufferSource) BitDepth() int   { return b.bitDepth }

// NextBlock reads up to n sample frames and de-interleaves them.
func (b *bufferSource) NextBlock(n int) ([][]int32, error) {
	channels := b.format.NumChannels
	buf := &audio.IntBuffer{Data: make([]int, n*channels), Format: b.format}

	read, err := b.read(buf)
	if err != nil {
		return nil, err
	}

	frames := read / channels
	out := make([][]int32, channels)
	for c := range out {
		out[c] = make([]int32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			out[c][i] = int32(buf.Data[i*channels+c])
		}
	}
	return out, nil
}
