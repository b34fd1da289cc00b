package ui

import (
	"fmt"
	"strings"

	"github.com/xaionaro-go/avcompare/pkg/peaks"
	"github.com/xaionaro-go/avcompare/pkg/playback"
	"github.com/xaionaro-go/avcompare/pkg/transport"
)

var levels = []rune(" ▁▂▃▄▅▆▇█")

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderTransports())
	b.WriteString(m.renderAnalysis())
	b.WriteString(m.renderReport())
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	return fmt.Sprintf("avcompare  mode: %s  state: %s  leader: %s\n\n",
		m.controller.SyncMode(), m.controller.State(), m.controller.Leader())
}

func (m Model) renderTransports() string {
	var b strings.Builder
	states := m.controller.States()
	sample := m.controller.Scheduler().LastSample()
	for idx, id := range transport.IDs() {
		state, ok := states[id]
		if !ok {
			fmt.Fprintf(&b, " %d %-15s  (not loaded)\n", idx+1, id)
			continue
		}
		icon := "⏸"
		switch {
		case state.IsEnded:
			icon = "⏹"
		case state.IsPlaying:
			icon = "▶"
		}
		drift := ""
		if d, ok := sample.Drift[id]; ok && sample.Mode == playback.SyncModeLinked {
			drift = fmt.Sprintf("  drift %+.3fs", d)
		}
		fmt.Fprintf(&b, " %d %-15s %s %8.2fs%s\n", idx+1, id, icon, state.PositionSeconds, drift)
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderAnalysis() string {
	switch {
	case m.analysisErr != nil:
		return fmt.Sprintf("analysis: %v\n\n", m.analysisErr)
	case m.analysis == nil:
		return "analysis: in progress...\n\n"
	}

	var b strings.Builder
	result := m.analysis.Peaks
	width := EnvelopeWidth
	if m.width > 0 && m.width-12 < width {
		width = max(m.width-12, 8)
	}
	fmt.Fprintf(&b, " original %s\n", sparkline(result, width, func(p peaks.Point) float64 { return p.Original }))
	fmt.Fprintf(&b, " isolated %s\n", sparkline(result, width, func(p peaks.Point) float64 { return p.Isolated }))
	if r := result.Original; r != nil {
		fmt.Fprintf(&b, " original peak %.2f at %.2fs..%.2fs\n", r.Amplitude, r.Start, r.End)
	}
	if r := result.Isolated; r != nil {
		fmt.Fprintf(&b, " isolated peak %.2f at %.2fs..%.2fs\n", r.Amplitude, r.Start, r.End)
	}
	if off := m.analysis.Offset; off != nil {
		fmt.Fprintf(&b, " offset %+.3fs (confidence %.2f)\n", off.Shift, off.Confidence)
	}
	if sim := m.analysis.Similarity; sim != nil {
		fmt.Fprintf(&b, " similarity at the isolated peak %.2f\n", *sim)
	}
	b.WriteString("\n")
	return b.String()
}

// sparkline squeezes the envelope into width cells, each showing the
// largest amplitude of the points it covers.
func sparkline(result peaks.Result, width int, value func(peaks.Point) float64) string {
	if len(result.Points) == 0 || width <= 0 {
		return ""
	}
	cells := make([]rune, width)
	for cell := range cells {
		from := cell * len(result.Points) / width
		to := (cell + 1) * len(result.Points) / width
		if to <= from {
			to = from + 1
		}
		var peak float64
		for _, p := range result.Points[from:min(to, len(result.Points))] {
			peak = max(peak, value(p))
		}
		cells[cell] = levels[int(peak*float64(len(levels)-1)+0.5)]
	}
	return string(cells)
}

func (m Model) renderReport() string {
	switch {
	case m.reportJob != nil:
		return "report: waiting for the analyzer...\n\n"
	case m.reportErr != nil:
		return fmt.Sprintf("report: %v\n\n", m.reportErr)
	case m.reportText != "":
		return fmt.Sprintf("report:\n%s\n\n", m.reportText)
	}
	return ""
}

func (m Model) renderHelp() string {
	return "space:play/pause  1/2/3:toggle  l:link  ←/→:seek  r:report  q:quit\n"
}
