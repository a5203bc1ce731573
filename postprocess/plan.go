// Package postprocess runs an ordered chain of fullscreen image stages
// over the primary render target. File and stream output additionally
// run a terminal color-encoding stage that never applies on screen.
package postprocess

// Texture slots used by PassIO.
const (
	SlotSource   = 0 // the primary render target
	SlotScratchA = 1
	SlotScratchB = 2
	SlotFinal    = 3 // the pass chain's output target
)

// PassIO describes one pass of a chain execution: which stage runs and
// which slots it reads and writes. Stage -1 is the terminal stage.
type PassIO struct {
	Stage int
	In    int
	Out   int
}

// Plan lays out the ping-pong schedule for numStages user stages. Each
// pass reads the previous pass's output, alternating between the two
// scratch slots; the last pass always writes the final slot. An empty
// plan means the source is already the result.
func Plan(numStages int, includeTerminal bool) []PassIO {
	total := numStages
	if includeTerminal {
		total++
	}
	plan := make([]PassIO, 0, total)
	in := SlotSource
	for i := 0; i < total; i++ {
		stage := i
		if includeTerminal && i == total-1 {
			stage = -1
		}
		out := SlotScratchA
		if i%2 == 1 {
			out = SlotScratchB
		}
		if i == total-1 {
			out = SlotFinal
		}
		plan = append(plan, PassIO{Stage: stage, In: in, Out: out})
		in = out
	}
	return plan
}
