package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypeSelect
	FieldTypeCheckbox
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Options     []string // For select fields
	Placeholder string
	Required    bool
	Validation  func(string) error
	Error       string

	textInput   textinput.Model
	selectedIdx int
}

func (f *FormField) isText() bool {
	return f.Type == FieldTypeText || f.Type == FieldTypeNumber
}

// Form is a vertical list of fields with tab navigation.
type Form struct {
	fields     []FormField
	focusIndex int
	width      int

	labelStyle    lipgloss.Style
	inputStyle    lipgloss.Style
	focusedStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	checkboxStyle lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			MarginRight(1),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Background(palette.BackgroundAlt).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Background(palette.BackgroundAlt).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		checkboxStyle: lipgloss.NewStyle().
			Foreground(palette.Primary),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 40
	ti.Placeholder = placeholder
	if fieldType == FieldTypeNumber && placeholder == "" {
		ti.Placeholder = "0"
	}

	f.fields = append(f.fields, FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	})
	if fieldType == FieldTypeCheckbox {
		f.fields[len(f.fields)-1].Value = "false"
	}

	if len(f.fields) == 1 {
		f.focus(0)
	}
	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

// SetFieldValue sets the value of a field. Select fields only accept one of
// their options.
func (f *Form) SetFieldValue(name, value string) *Form {
	field := f.field(name)
	if field == nil {
		return f
	}
	if field.Type == FieldTypeSelect {
		for i, opt := range field.Options {
			if opt == value {
				field.selectedIdx = i
				field.Value = value
			}
		}
		return f
	}
	field.Value = value
	field.textInput.SetValue(value)
	return f
}

// SetFieldLabel renames a field.
func (f *Form) SetFieldLabel(name, label string) *Form {
	if field := f.field(name); field != nil {
		field.Label = label
	}
	return f
}

// SetFieldOptions sets options for select fields
func (f *Form) SetFieldOptions(name string, options []string) *Form {
	field := f.field(name)
	if field == nil || field.Type != FieldTypeSelect {
		return f
	}
	field.Options = options
	field.selectedIdx = 0
	if len(options) > 0 {
		field.Value = options[0]
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// SetFieldError shows err under the field; nil clears it.
func (f *Form) SetFieldError(name string, err error) *Form {
	if field := f.field(name); field != nil {
		field.Error = ""
		if err != nil {
			field.Error = err.Error()
		}
	}
	return f
}

// Focused returns the name of the focused field.
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		field := &f.fields[f.focusIndex]
		switch msg.String() {
		case "tab", "down":
			if msg.String() == "down" && field.Type == FieldTypeSelect {
				f.shiftOption(1)
				return f, nil
			}
			f.focus((f.focusIndex + 1) % len(f.fields))
			return f, nil
		case "shift+tab", "up":
			if msg.String() == "up" && field.Type == FieldTypeSelect {
				f.shiftOption(-1)
				return f, nil
			}
			f.focus((f.focusIndex - 1 + len(f.fields)) % len(f.fields))
			return f, nil
		case "enter":
			if field.Type == FieldTypeSelect {
				f.shiftOption(1)
			} else {
				f.focus((f.focusIndex + 1) % len(f.fields))
			}
			return f, nil
		case " ":
			if field.Type == FieldTypeCheckbox {
				if field.Value == "true" {
					field.Value = "false"
				} else {
					field.Value = "true"
				}
				return f, nil
			}
		}
	}

	field := &f.fields[f.focusIndex]
	if !field.isText() {
		return f, nil
	}
	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	field.Value = field.textInput.Value()
	field.Error = ""
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	var content strings.Builder

	for i, field := range f.fields {
		fieldStyle := f.inputStyle
		if i == f.focusIndex {
			fieldStyle = f.focusedStyle
		}

		if field.Type != FieldTypeCheckbox {
			label := field.Label
			if field.Required {
				label += " *"
			}
			content.WriteString(f.labelStyle.Render(label))
			content.WriteString("\n")
		}

		switch field.Type {
		case FieldTypeText, FieldTypeNumber:
			content.WriteString(fieldStyle.Render(field.textInput.View()))

		case FieldTypeSelect:
			text := field.Value
			if i == f.focusIndex {
				text = "◀ " + text + " ▶"
			}
			content.WriteString(fieldStyle.Render(text))

		case FieldTypeCheckbox:
			box := "☐"
			if field.Value == "true" {
				box = "☑"
			}
			text := box + " " + field.Label
			if i == f.focusIndex {
				content.WriteString(f.focusedStyle.Render(text))
			} else {
				content.WriteString(f.checkboxStyle.Render(text))
			}
		}
		content.WriteString("\n")

		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
			content.WriteString("\n")
		}
	}

	return content.String()
}

func (f *Form) focus(i int) {
	f.fields[f.focusIndex].textInput.Blur()
	f.focusIndex = i
	if f.fields[i].isText() {
		f.fields[i].textInput.Focus()
	}
}

func (f *Form) shiftOption(delta int) {
	field := &f.fields[f.focusIndex]
	if len(field.Options) == 0 {
		return
	}
	n := len(field.Options)
	field.selectedIdx = (field.selectedIdx + delta + n) % n
	field.Value = field.Options[field.selectedIdx]
}

// Validate validates all form fields
func (f *Form) Validate() bool {
	valid := true

	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""

		if field.Required && strings.TrimSpace(field.Value) == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}
		if field.Validation != nil && strings.TrimSpace(field.Value) != "" {
			if err := field.Validation(field.Value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}

	return valid
}

// GetValue returns the trimmed value of a field.
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return strings.TrimSpace(field.Value)
	}
	return ""
}

// Checked reports whether a checkbox field is ticked.
func (f *Form) Checked(name string) bool {
	return f.GetValue(name) == "true"
}

// SetWidth resizes the text inputs.
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 4 // padding and border
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}
