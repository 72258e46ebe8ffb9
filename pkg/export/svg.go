package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/permitflow/pkg/loader"
	"github.com/vanderheijden86/permitflow/pkg/model"
)

// Flowchart layout, in SVG user units.
const (
	nodeW   = 200
	nodeH   = 110
	gapX    = 48
	marginX = 24
	headerH = 64
	footerH = 24
	charsPL = 30 // description characters per line
)

// Palette shared with the terminal theme (dark variant).
const (
	colorBackdrop  = "#282a36"
	colorCard      = "#343746"
	colorText      = "#f8f8f2"
	colorSubtle    = "#bfbfbf"
	colorEdge      = "#6272a4"
	colorApplicant = "#4c9aff"
	colorAuthority = "#50fa7b"
	colorShared    = "#bd93f9"
	colorNeutral   = "#6272a4"
)

func accentColor(r model.Responsible) string {
	switch r {
	case model.ResponsibleApplicant:
		return colorApplicant
	case model.ResponsibleAuthority:
		return colorAuthority
	case model.ResponsibleShared:
		return colorShared
	default:
		return colorNeutral
	}
}

// RenderFlowchartSVG draws the steps of one section left to right, with an
// arrow between each consecutive pair.
func RenderFlowchartSVG(w io.Writer, title string, steps []model.WorkflowStep) {
	n := len(steps)
	width := 2*marginX + n*nodeW + max(n-1, 0)*gapX
	if width < 2*marginX+nodeW {
		width = 2*marginX + nodeW
	}
	height := headerH + nodeH + footerH

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+colorBackdrop)
	canvas.Text(marginX, 38, title, fmt.Sprintf("fill:%s;font-size:18px;font-family:sans-serif;font-weight:bold", colorText))

	for i, st := range steps {
		x := marginX + i*(nodeW+gapX)
		y := headerH
		accent := accentColor(st.Responsible)

		canvas.Roundrect(x, y, nodeW, nodeH, 8, 8, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", colorCard, colorEdge))
		canvas.Rect(x, y, 5, nodeH, "fill:"+accent)
		canvas.Text(x+14, y+22, truncate(fmt.Sprintf("%d. %s", st.ID, st.Title), 26),
			fmt.Sprintf("fill:%s;font-size:13px;font-family:sans-serif;font-weight:bold", colorText))
		canvas.Text(x+14, y+40, string(st.Responsible), fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", accent))
		for j, line := range wrapWords(st.Description, charsPL, 3) {
			canvas.Text(x+14, y+58+j*14, line, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", colorSubtle))
		}
		if st.Duration != "" {
			canvas.Text(x+14, y+nodeH-8, "Duration: "+st.Duration, fmt.Sprintf("fill:%s;font-size:10px;font-family:sans-serif", colorSubtle))
		}

		if i < n-1 {
			x1 := x + nodeW + 6
			x2 := x + nodeW + gapX - 6
			cy := y + nodeH/2
			canvas.Line(x1, cy, x2-8, cy, fmt.Sprintf("stroke:%s;stroke-width:2", colorEdge))
			canvas.Polygon([]int{x2, x2 - 8, x2 - 8}, []int{cy, cy - 4, cy + 4}, "fill:"+colorEdge)
		}
	}
	canvas.End()
}

// WriteFlowcharts writes one SVG per steps or flowchart section of every
// workflow into dir, named <category>-<section index>.svg.
func WriteFlowcharts(ds *loader.Dataset, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create flowchart dir: %w", err)
	}
	var paths []string
	for _, c := range ds.Workflows {
		for i, s := range c.Sections {
			steps, ok := s.Content.(model.StepsContent)
			if !ok || len(steps.Steps) == 0 {
				continue
			}
			path := filepath.Join(dir, fmt.Sprintf("%s-%d.svg", c.ID, i))
			f, err := os.Create(path)
			if err != nil {
				return paths, fmt.Errorf("create %s: %w", path, err)
			}
			RenderFlowchartSVG(f, c.Title+": "+s.Title, steps.Steps)
			if err := f.Close(); err != nil {
				return paths, fmt.Errorf("write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// wrapWords breaks s into at most maxLines lines of roughly width runes; the
// last line is truncated when text remains.
func wrapWords(s string, width, maxLines int) []string {
	var lines []string
	var cur strings.Builder
	words := strings.Fields(s)
	for i, w := range words {
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(w)) > width {
			lines = append(lines, cur.String())
			cur.Reset()
			if len(lines) == maxLines {
				last := strings.Join(append([]string{lines[maxLines-1]}, words[i:]...), " ")
				lines[maxLines-1] = truncate(last, width)
				return lines
			}
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
