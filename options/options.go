package options

// Options collects the parsed command line. Pointer fields come
// straight from flag registration in cmd.
type Options struct {
	ShaderPath string // positional: fragment program (.wgsl)

	Width  *int
	Height *int

	Textures     *string // comma-separated image files bound after slot 0
	UniformsFile *string // JSON uniform/push-constant config
	PostShaders  *string // comma-separated post-processing fragment programs
	Mic          *bool   // bind the microphone FFT texture

	ReloadMillis *int  // watcher debounce, 0 disables hot reload
	Generate     *bool // write a skeleton shader to ShaderPath first

	PaintingWidth   *int
	PaintingHeight  *int
	PaintingFile    *string
	PauseWhilePaint *bool
	OpenPainting    *bool
	MovieFile       *string
	MovieFPS        *int
	MovieWidth      *int
	MovieHeight     *int
	ShowHelp        *bool
}
