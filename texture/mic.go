package texture

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	micTextureWidth  = 512
	micTextureHeight = 2
	// 2048 input samples give 1024 frequency bins; the texture keeps
	// the lowest 512.
	fftInputSize      = 2048
	historySize       = fftInputSize * 4
	defaultSampleRate = 44100
)

// MicTexture exposes the default microphone as a two-row R32Float
// texture: row 0 holds the smoothed FFT spectrum, row 1 the most recent
// waveform segment, both scaled to [0, 1].
type MicTexture struct {
	Texture

	queue  *wgpu.Queue
	stream *portaudio.Stream
	in     chan []float32

	mu      sync.Mutex
	history []float32
	pos     int

	blackman    []float64
	lastFFT     []float64
	smoothing   float64
	textureData []float32
	uploadBuf   []byte
}

// NewMic opens the default input device and starts consuming samples.
func NewMic(device *wgpu.Device, queue *wgpu.Queue) (*MicTexture, error) {
	base, err := newTexture(device, micTextureWidth, micTextureHeight, wgpu.TextureFormatR32Float, "Microphone Texture")
	if err != nil {
		return nil, err
	}

	m := &MicTexture{
		Texture:     *base,
		queue:       queue,
		in:          make(chan []float32, 16),
		history:     make([]float32, historySize),
		blackman:    window.Blackman(fftInputSize),
		lastFFT:     make([]float64, micTextureWidth),
		smoothing:   0.8,
		textureData: make([]float32, micTextureWidth*micTextureHeight),
		uploadBuf:   make([]byte, micTextureWidth*micTextureHeight*4),
	}
	if err := m.startCapture(); err != nil {
		base.Release()
		return nil, err
	}
	go m.consume()
	log.Println("microphone capture started")
	return m, nil
}

func (m *MicTexture) startCapture() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	host, err := portaudio.DefaultHostApi()
	if err != nil {
		portaudio.Terminate()
		return err
	}
	params := portaudio.HighLatencyParameters(host.DefaultInputDevice, nil)
	params.Input.Channels = 1
	params.SampleRate = defaultSampleRate

	stream, err := portaudio.OpenStream(params, m.capture)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting audio stream: %w", err)
	}
	m.stream = stream
	return nil
}

// capture runs on the portaudio callback thread. The input slice is
// reused by portaudio, and the send must never block the callback.
func (m *MicTexture) capture(in []float32) {
	samples := make([]float32, len(in))
	copy(samples, in)
	select {
	case m.in <- samples:
	default:
	}
}

func (m *MicTexture) consume() {
	for samples := range m.in {
		m.mu.Lock()
		for _, s := range samples {
			m.history[m.pos] = s
			m.pos = (m.pos + 1) % historySize
		}
		m.mu.Unlock()
	}
}

func (m *MicTexture) recentSamples(n int) []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float32, n)
	for i := range out {
		out[i] = m.history[(m.pos-n+i+historySize)%historySize]
	}
	return out
}

// Update recomputes the spectrum and waveform rows and uploads them.
// Called once per rendered frame.
func (m *MicTexture) Update() {
	const minDecibels = -100.0
	const maxDecibels = -30.0

	samples := m.recentSamples(fftInputSize)
	windowed := make([]float64, fftInputSize)
	for i, s := range samples {
		windowed[i] = float64(s) * m.blackman[i]
	}
	bins := fft.FFTReal(windowed)

	for i := 0; i < micTextureWidth; i++ {
		re, im := real(bins[i]), imag(bins[i])
		magnitude := math.Sqrt(re*re+im*im) * (2.0 / float64(fftInputSize))
		db := 20 * math.Log10(magnitude+1e-9)
		m.lastFFT[i] = m.smoothing*m.lastFFT[i] + (1.0-m.smoothing)*db

		scaled := (m.lastFFT[i] - minDecibels) / (maxDecibels - minDecibels)
		m.textureData[i] = float32(math.Min(math.Max(scaled, 0), 1))
	}

	wave := samples[len(samples)-micTextureWidth:]
	for i, s := range wave {
		m.textureData[micTextureWidth+i] = (s + 1.0) * 0.5
	}

	m.upload()
}

func (m *MicTexture) upload() {
	for i, f := range m.textureData {
		bits := math.Float32bits(f)
		m.uploadBuf[4*i] = byte(bits)
		m.uploadBuf[4*i+1] = byte(bits >> 8)
		m.uploadBuf[4*i+2] = byte(bits >> 16)
		m.uploadBuf[4*i+3] = byte(bits >> 24)
	}
	m.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: m.handle,
			Origin:  wgpu.Origin3D{},
			Aspect:  wgpu.TextureAspectAll,
		},
		m.uploadBuf,
		&wgpu.TextureDataLayout{
			BytesPerRow:  micTextureWidth * 4,
			RowsPerImage: micTextureHeight,
		},
		&wgpu.Extent3D{Width: micTextureWidth, Height: micTextureHeight, DepthOrArrayLayers: 1},
	)
}

// Release stops the capture stream before freeing the texture.
func (m *MicTexture) Release() {
	if m.stream != nil {
		m.stream.Close()
		portaudio.Terminate()
		m.stream = nil
		close(m.in)
	}
	m.Texture.Release()
}
