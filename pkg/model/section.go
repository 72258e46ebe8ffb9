package model

// SectionKind is the declared rendering mode of a section.
type SectionKind string

const (
	KindFlowchart SectionKind = "flowchart"
	KindSteps     SectionKind = "steps"
	KindInfo      SectionKind = "info"
	KindTable     SectionKind = "table"
)

// Content is the payload of a Section. The set of implementations is closed:
// StepsContent, InfoContent and TableContent. A nil Content means the section
// was declared with an unknown type or a payload that did not match its type.
type Content interface {
	Kind() SectionKind
	sealed()
}

// StepsContent carries the steps of a flowchart or steps section.
type StepsContent struct {
	Flowchart bool
	Steps     []WorkflowStep
}

func (c StepsContent) Kind() SectionKind {
	if c.Flowchart {
		return KindFlowchart
	}
	return KindSteps
}

func (StepsContent) sealed() {}

// InfoContent carries the items of an info section.
type InfoContent struct {
	Items []InfoItem
}

func (InfoContent) Kind() SectionKind { return KindInfo }
func (InfoContent) sealed()           {}

// TableContent carries a table section.
type TableContent struct {
	Table TableData
}

func (TableContent) Kind() SectionKind { return KindTable }
func (TableContent) sealed()           {}

// Section is one titled unit of content within a category.
type Section struct {
	Title       string
	Description string
	Citation    *Citation
	Content     Content
}

// Kind returns the declared kind, or "" for a section without usable content.
func (s Section) Kind() SectionKind {
	if s.Content == nil {
		return ""
	}
	return s.Content.Kind()
}

// Citations returns every citation reference carried by the section, in
// document order: section, table, then items and their sub-items.
func (s Section) Citations() []Citation {
	var out []Citation
	if s.Citation != nil {
		out = append(out, *s.Citation)
	}
	switch c := s.Content.(type) {
	case TableContent:
		if c.Table.Citation != nil {
			out = append(out, *c.Table.Citation)
		}
	case InfoContent:
		for _, item := range c.Items {
			if item.Citation != nil {
				out = append(out, *item.Citation)
			}
			for _, sub := range item.SubItems {
				if sub.Citation != nil {
					out = append(out, *sub.Citation)
				}
			}
		}
	}
	return out
}
