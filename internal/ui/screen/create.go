package screen

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/birthpad/internal/launchpad"
	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/component"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
	"github.com/rovshanmuradov/birthpad/internal/upload"
)

type createDoneMsg struct {
	res *launchpad.CreateResult
	err error
}

// CreateScreen launches a token: metadata upload, then create and optional
// initial buy in one transaction.
type CreateScreen struct {
	frame

	form    *component.Form
	busy    bool
	result  *launchpad.CreateResult
	lastErr error
}

// NewCreateScreen creates the token launch form.
func NewCreateScreen(svc *ui.Services) *CreateScreen {
	s := &CreateScreen{frame: newFrame(svc, ui.RouteCreate)}
	s.form = component.NewForm().
		AddField("name", component.FieldTypeText, "Name", true, "").
		AddField("symbol", component.FieldTypeText, "Ticker", true, "").
		AddField("description", component.FieldTypeText, "Description", false, "").
		AddField("image", component.FieldTypeText, "Image file", false, "path/to/logo.png").
		AddField("uri", component.FieldTypeText, "Metadata URI", false, "used when no image is given").
		AddField("buy", component.FieldTypeNumber, "Initial buy (SOL)", false, "0").
		AddField("createOnly", component.FieldTypeCheckbox, "Create only, skip the initial buy", false, "").
		SetFieldValidation("name", func(v string) error { return launchpad.ValidateToken(v, "") }).
		SetFieldValidation("symbol", func(v string) error { return launchpad.ValidateToken("", v) }).
		SetFieldValidation("buy", func(v string) error {
			_, err := launchpad.FromUnits(v, 9)
			return err
		})
	return s
}

// Init initializes the create screen
func (s *CreateScreen) Init() tea.Cmd {
	s.refreshStatus()
	return nil
}

// Update handles screen updates
func (s *CreateScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if cmd, ok := s.handle(msg); ok {
		return s, cmd
	}

	switch msg := msg.(type) {
	case createDoneMsg:
		s.busy = false
		s.result, s.lastErr = msg.res, msg.err
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, s.keyMap.Submit) {
			return s, s.submit()
		}
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return s, cmd
	}
	return s, nil
}

// request builds the launch request from the form.
func (s *CreateScreen) request() (launchpad.CreateRequest, error) {
	req := launchpad.CreateRequest{
		Name:       s.form.GetValue("name"),
		Symbol:     s.form.GetValue("symbol"),
		URI:        s.form.GetValue("uri"),
		CreateOnly: s.form.Checked("createOnly"),
	}
	if raw := s.form.GetValue("buy"); raw != "" && !req.CreateOnly {
		amount, err := launchpad.FromUnits(raw, 9)
		if err != nil {
			return req, err
		}
		req.BuyAmount = amount
	}
	if req.BuyAmount == 0 {
		req.CreateOnly = true
	}
	if req.URI == "" && s.form.GetValue("image") == "" {
		return req, errors.New("an image file or a metadata URI is required")
	}
	return req, nil
}

func (s *CreateScreen) submit() tea.Cmd {
	if s.busy || !s.form.Validate() {
		return nil
	}
	req, err := s.request()
	if err != nil {
		s.lastErr = err
		return nil
	}
	if s.svc == nil || s.svc.Launchpad == nil {
		s.lastErr = errors.New("launchpad is not available")
		return nil
	}

	imagePath := s.form.GetValue("image")
	description := s.form.GetValue("description")
	lp := s.svc.Launchpad
	uploader := s.svc.Uploader
	if imagePath != "" && uploader == nil {
		s.lastErr = errors.New("no upload provider is configured")
		return nil
	}

	s.busy = true
	s.lastErr = nil
	s.result = nil
	ctx, cancel := s.actionContext()
	return func() tea.Msg {
		defer cancel()
		if imagePath != "" {
			uri, err := upload.PinMetadata(ctx, uploader, imagePath, upload.Meta{Name: req.Name, Symbol: req.Symbol, Description: description})
			if err != nil {
				return createDoneMsg{err: err}
			}
			req.URI = uri
		}
		res, err := lp.CreateAndBuy(ctx, req)
		return createDoneMsg{res: res, err: err}
	}
}

// View renders the create screen
func (s *CreateScreen) View() string {
	body := s.form.View()
	switch {
	case s.busy:
		body += "\n" + style.InfoStyle.Render("Uploading metadata and creating the pool...")
	case s.lastErr != nil:
		body += "\n" + style.ErrorStyle.Render("✗ "+s.lastErr.Error())
	case s.result != nil:
		body += "\n" + style.InfoStyle.Render("Created "+s.result.Mint.String()+"\nPool "+s.result.Pool.String())
	}
	return s.render("Create Token", body)
}

// SetSize sets the screen dimensions
func (s *CreateScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.form.SetWidth(style.FormWidth(width))
}
