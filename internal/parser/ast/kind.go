package ast

type WidgetKind int

const (
	KindCustom WidgetKind = iota
	KindColumn
	KindRow
	KindContainer
	KindScrollable
	KindStack
	KindText
	KindButton
	KindTextInput
	KindCheckbox
	KindToggler
	KindSlider
	KindPickList
	KindRadio
	KindImage
	KindSvg
	KindSpace
	KindRule
	KindProgressBar
	KindTooltip
)

var kindNames = [...]string{
	KindCustom:      "custom",
	KindColumn:      "column",
	KindRow:         "row",
	KindContainer:   "container",
	KindScrollable:  "scrollable",
	KindStack:       "stack",
	KindText:        "text",
	KindButton:      "button",
	KindTextInput:   "text_input",
	KindCheckbox:    "checkbox",
	KindToggler:     "toggler",
	KindSlider:      "slider",
	KindPickList:    "pick_list",
	KindRadio:       "radio",
	KindImage:       "image",
	KindSvg:         "svg",
	KindSpace:       "space",
	KindRule:        "rule",
	KindProgressBar: "progress_bar",
	KindTooltip:     "tooltip",
}

var kindsByName = func() map[string]WidgetKind {
	m := make(map[string]WidgetKind, len(kindNames))
	for k, name := range kindNames {
		if WidgetKind(k) != KindCustom {
			m[name] = WidgetKind(k)
		}
	}
	return m
}()

func (k WidgetKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// LookupKind returns the widget kind for a tag name, or KindCustom if the name
// is not a built-in widget.
func LookupKind(name string) WidgetKind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindCustom
}
