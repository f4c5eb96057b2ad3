package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-labels/logging"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func float64ToBytes(samples []float64) []byte {
	data := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint64(data[i*8:i*8+8], math.Float64bits(s))
	}
	return data
}

func TestBytesToFloat64RoundTrip(t *testing.T) {
	samples := []float64{0.0, 1.0, -1.0, 0.5, -0.25, math.Pi}
	decoded := bytesToFloat64(float64ToBytes(samples))

	require.Len(t, decoded, len(samples))
	for i, want := range samples {
		assert.Equal(t, want, decoded[i], "sample %d", i)
	}
}

func TestBytesToFloat64TruncatesPartialSample(t *testing.T) {
	data := float64ToBytes([]float64{1.0, 2.0})
	data = append(data, 0xAB, 0xCD, 0xEF)

	decoded := bytesToFloat64(data)
	require.Len(t, decoded, 2)
	assert.Equal(t, 1.0, decoded[0])
	assert.Equal(t, 2.0, decoded[1])
}

func TestBytesToFloat64Empty(t *testing.T) {
	assert.Nil(t, bytesToFloat64(nil))
	assert.Nil(t, bytesToFloat64([]byte{0x01, 0x02}))
}

func TestParseProbeOutput(t *testing.T) {
	jsonData := []byte(`{
		"streams": [
			{
				"codec_type": "audio",
				"codec_name": "pcm_s16le",
				"sample_rate": "44100",
				"channels": 2,
				"duration": "3.500000"
			}
		]
	}`)

	metadata, err := parseProbeOutput(jsonData)
	require.NoError(t, err)
	assert.Equal(t, 44100, metadata.SampleRate)
	assert.Equal(t, 2, metadata.Channels)
	assert.Equal(t, "pcm_s16le", metadata.Codec)
	assert.InDelta(t, 3.5, metadata.Duration, 1e-9)
}

func TestParseProbeOutputNoStreams(t *testing.T) {
	_, err := parseProbeOutput([]byte(`{"streams": []}`))
	assert.Error(t, err)
}

func TestParseProbeOutputNotAudio(t *testing.T) {
	jsonData := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "sample_rate": "", "channels": 0}
		]
	}`)
	_, err := parseProbeOutput(jsonData)
	assert.Error(t, err)
}

func TestParseProbeOutputInvalidChannels(t *testing.T) {
	jsonData := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "flac", "sample_rate": "48000", "channels": 0}
		]
	}`)
	_, err := parseProbeOutput(jsonData)
	assert.Error(t, err)
}

func TestParseProbeOutputDefaultsOnBadFields(t *testing.T) {
	jsonData := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "mp3", "sample_rate": "garbage", "channels": 1, "duration": "n/a"}
		]
	}`)

	metadata, err := parseProbeOutput(jsonData)
	require.NoError(t, err)
	assert.Equal(t, 44100, metadata.SampleRate)
	assert.Equal(t, 0.0, metadata.Duration)
}

func TestParseProbeOutputMalformedJSON(t *testing.T) {
	_, err := parseProbeOutput([]byte(`not json`))
	assert.Error(t, err)
}

func TestDefaultDecoderConfig(t *testing.T) {
	config := DefaultDecoderConfig()
	assert.Equal(t, 22050, config.TargetSampleRate)
	assert.Equal(t, "ffmpeg", config.FFmpegPath)
	assert.Equal(t, "ffprobe", config.FFprobePath)
	assert.Greater(t, config.Timeout.Seconds(), 0.0)
}

func TestNewDecoderNilConfig(t *testing.T) {
	decoder := NewDecoder(nil)
	require.NotNil(t, decoder.config)
	assert.Equal(t, 22050, decoder.config.TargetSampleRate)
}

func TestBuildFFmpegArgs(t *testing.T) {
	decoder := NewDecoder(&DecoderConfig{TargetSampleRate: 16000})
	args := decoder.buildFFmpegArgs()

	assert.Contains(t, args, "f64le")
	assert.Contains(t, args, "-ac")
	assert.Contains(t, args, "1")
	assert.Contains(t, args, "16000")
	assert.NotContains(t, args, "-t")
}

func TestBuildFFmpegArgsMaxDuration(t *testing.T) {
	decoder := NewDecoder(&DecoderConfig{
		TargetSampleRate: 22050,
		MaxDuration:      90 * time.Second,
	})
	args := decoder.buildFFmpegArgs()
	assert.Contains(t, args, "-t")
	assert.Contains(t, args, "90.00")
}