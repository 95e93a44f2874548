package screen

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-multierror"

	"github.com/rovshanmuradov/birthpad/internal/app"
	"github.com/rovshanmuradov/birthpad/internal/i18n"
	"github.com/rovshanmuradov/birthpad/internal/settings"
	"github.com/rovshanmuradov/birthpad/internal/types"
	"github.com/rovshanmuradov/birthpad/internal/ui"
	"github.com/rovshanmuradov/birthpad/internal/ui/component"
	"github.com/rovshanmuradov/birthpad/internal/ui/router"
	"github.com/rovshanmuradov/birthpad/internal/ui/style"
)

type settingsSavedMsg struct {
	err error
}

var (
	priorityLevels = []string{types.PriorityFast.String(), types.PriorityTurbo.String(), types.PriorityUltra.String()}
	priorityModes  = []string{types.PriorityMaxCap.String(), types.PriorityExact.String()}
)

// SettingsScreen edits the persisted preferences.
type SettingsScreen struct {
	frame

	form    *component.Form
	initial map[string]string
	saving  bool
	saved   bool
	lastErr error
}

// NewSettingsScreen loads the current preferences into the form.
func NewSettingsScreen(svc *ui.Services) *SettingsScreen {
	s := &SettingsScreen{frame: newFrame(svc, ui.RouteSettings)}
	s.form = component.NewForm().
		AddField("slippage", component.FieldTypeNumber, "Launchpad slippage %", false, "2.5").
		AddField("rpc", component.FieldTypeText, "RPC node URL", false, "https://").
		AddField("fee", component.FieldTypeNumber, "Transaction fee (SOL)", false, "0.01").
		AddField("level", component.FieldTypeSelect, "Priority level", false, "").
		AddField("mode", component.FieldTypeSelect, "Priority mode", false, "").
		AddField("lang", component.FieldTypeSelect, "Language", false, "").
		AddField("userTokens", component.FieldTypeCheckbox, "Show user-added tokens", false, "").
		SetFieldOptions("level", priorityLevels).
		SetFieldOptions("mode", priorityModes).
		SetFieldOptions("lang", i18n.Supported).
		SetFieldValidation("slippage", func(v string) error {
			_, err := settings.ParseSlippagePercent(v)
			return err
		}).
		SetFieldValidation("rpc", func(v string) error {
			if !app.ValidURL(v) {
				return errors.New("invalid url")
			}
			return nil
		})
	s.load()
	return s
}

func (s *SettingsScreen) load() {
	if s.svc == nil {
		return
	}
	if s.svc.Prefs != nil {
		s.form.SetFieldValue("slippage", settings.FormatPercent(s.svc.Prefs.Slippage(settings.SlippageLaunchpad)))
		if s.svc.Prefs.DisplayTokenSettings().UserAdded {
			s.form.SetFieldValue("userTokens", "true")
		}
	}
	if s.svc.Session != nil {
		st := s.svc.Session.State()
		s.form.SetFieldValue("rpc", st.RPCURL)
		s.form.SetFieldValue("fee", st.TransactionFee)
		s.form.SetFieldValue("level", st.PriorityLevel.String())
		s.form.SetFieldValue("mode", st.PriorityMode.String())
	}
	if s.svc.I18n != nil {
		s.form.SetFieldValue("lang", s.svc.I18n.Language())
	}
	s.initial = s.values()
}

func (s *SettingsScreen) values() map[string]string {
	out := make(map[string]string, 7)
	for _, name := range []string{"slippage", "rpc", "fee", "level", "mode", "lang", "userTokens"} {
		out[name] = s.form.GetValue(name)
	}
	return out
}

// Init initializes the settings screen
func (s *SettingsScreen) Init() tea.Cmd {
	s.refreshStatus()
	return nil
}

// Update handles screen updates
func (s *SettingsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if cmd, ok := s.handle(msg); ok {
		return s, cmd
	}

	switch msg := msg.(type) {
	case settingsSavedMsg:
		s.saving = false
		s.lastErr = msg.err
		s.saved = msg.err == nil
		s.initial = s.values()
		s.refreshStatus()
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, s.keyMap.Submit) {
			return s, s.save()
		}
		s.saved = false
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return s, cmd
	}
	return s, nil
}

// save applies only the changed values. The RPC switch validates the node
// first and runs off the UI loop.
func (s *SettingsScreen) save() tea.Cmd {
	if s.saving || s.svc == nil || !s.form.Validate() {
		return nil
	}
	changed := s.values()
	for k, v := range s.initial {
		if changed[k] == v {
			delete(changed, k)
		}
	}
	if len(changed) == 0 {
		s.saved = true
		return nil
	}

	svc := s.svc
	s.saving = true
	s.lastErr = nil
	ctx, cancel := s.actionContext()
	return func() tea.Msg {
		defer cancel()
		var result *multierror.Error

		if v, ok := changed["slippage"]; ok && svc.Prefs != nil {
			fraction, err := settings.ParseSlippagePercent(v)
			if err == nil {
				err = svc.Prefs.SetSlippage(settings.SlippageLaunchpad, fraction)
			}
			if err == nil && svc.Launchpad != nil {
				svc.Launchpad.SetSlippage(fraction)
			}
			result = multierror.Append(result, err)
		}
		if v, ok := changed["userTokens"]; ok && svc.Prefs != nil {
			result = multierror.Append(result, svc.Prefs.SetUserAddedTokens(v == "true"))
		}
		if svc.Session != nil {
			if v, ok := changed["fee"]; ok && v != "" {
				result = multierror.Append(result, svc.Session.SetTransactionFee(v))
			}
			_, levelChanged := changed["level"]
			_, modeChanged := changed["mode"]
			if levelChanged || modeChanged {
				result = multierror.Append(result, s.applyPriority(svc.Session))
			}
			if v, ok := changed["rpc"]; ok && v != "" {
				if !svc.Session.SetRPCURL(ctx, v, false, false) {
					result = multierror.Append(result, errors.New("rpc node rejected"))
				}
			}
		}
		if v, ok := changed["lang"]; ok && svc.I18n != nil {
			_, err := svc.I18n.ChangeLanguage(v)
			result = multierror.Append(result, err)
		}
		return settingsSavedMsg{err: result.ErrorOrNil()}
	}
}

func (s *SettingsScreen) applyPriority(session ui.Session) error {
	level, err := types.ParsePriorityLevel(s.form.GetValue("level"))
	if err != nil {
		return err
	}
	mode := types.PriorityMaxCap
	if s.form.GetValue("mode") == types.PriorityExact.String() {
		mode = types.PriorityExact
	}
	return session.SetPriority(level, mode)
}

// View renders the settings screen
func (s *SettingsScreen) View() string {
	body := s.form.View()
	switch {
	case s.saving:
		body += "\n" + style.InfoStyle.Render("Saving...")
	case s.lastErr != nil:
		body += "\n" + style.ErrorStyle.Render("✗ "+s.lastErr.Error())
	case s.saved:
		body += "\n" + style.SuccessStyle.Render("✓ Saved")
	}
	if fraction, err := settings.ParseSlippagePercent(s.form.GetValue("slippage")); err == nil {
		switch settings.CheckSlippage(fraction) {
		case settings.SlippageFrontRun:
			body += "\n" + style.WarningStyle.Render(s.t("setting.slippage_frontrun", "Your transaction may be frontrun"))
		case settings.SlippageMayFail:
			body += "\n" + style.WarningStyle.Render(s.t("setting.slippage_fail", "Your transaction may fail"))
		}
	}
	return s.render("Settings", body)
}

// SetSize sets the screen dimensions
func (s *SettingsScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.form.SetWidth(style.FormWidth(width))
}
