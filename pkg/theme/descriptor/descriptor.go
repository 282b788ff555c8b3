// Package descriptor generates the custom-counter.xml theme descriptor.
//
// The descriptor declares one image block per frame, then a single looping
// animation that walks the frames in order, then a caller-supplied footer.
// Frame file and tag names come from the theme naming functions, the same
// ones the archive assembler uses for entry paths.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/provide-io/countertheme/pkg/theme"
)

const (
	// AnimationName is the name the footer uses to reference the frame loop.
	AnimationName = "custom-counter-bg"

	// AnimationTimeSource keeps the loop running regardless of widget state.
	AnimationTimeSource = "always"

	rootOpen = "<themes>\n"
	indent   = "    "
)

// Build renders the descriptor for frames, in slice order, followed by footer
// verbatim. The output is a pure function of its inputs.
func Build(frames []theme.ResizedFrame, footer string) string {
	var b strings.Builder
	b.Grow(len(rootOpen) + len(frames)*160 + len(footer) + 256)

	b.WriteString(rootOpen)
	for _, f := range frames {
		writeDeclaration(&b, f)
	}
	writeAnimation(&b, frames)
	b.WriteString(footer)

	return b.String()
}

func writeDeclaration(b *strings.Builder, f theme.ResizedFrame) {
	fmt.Fprintf(b, "%s<images file=%q>\n", indent, theme.FrameDescriptorRef(f.Index))
	fmt.Fprintf(b, "%s%s<area name=%q xywh=\"*\"/>\n", indent, indent, theme.FrameTagName(f.Index))
	fmt.Fprintf(b, "%s</images>\n", indent)
}

func writeAnimation(b *strings.Builder, frames []theme.ResizedFrame) {
	in2 := indent + indent
	in3 := in2 + indent
	in4 := in3 + indent

	fmt.Fprintf(b, "%s<images>\n", indent)
	fmt.Fprintf(b, "%s<animation name=%q timeSource=%q>\n", in2, AnimationName, AnimationTimeSource)
	fmt.Fprintf(b, "%s<repeat>\n", in3)
	for _, f := range frames {
		fmt.Fprintf(b, "%s<frame ref=%q duration=\"%d\"/>\n", in4, theme.FrameTagName(f.Index), f.DurationTicks)
	}
	fmt.Fprintf(b, "%s</repeat>\n", in3)
	fmt.Fprintf(b, "%s</animation>\n", in2)
	fmt.Fprintf(b, "%s</images>\n", indent)
}
