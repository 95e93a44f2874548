package settings

import (
	"encoding/json"
	"strconv"
)

// RPCNodeRef is the stored copy of a backend RPC list entry. The URL lives
// in RPCPreference.URL so a custom endpoint can be stored without a node.
type RPCNodeRef struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	WS     string `json:"ws,omitempty"`
	Weight int    `json:"weight,omitempty"`
	Batch  bool   `json:"batch,omitempty"`
}

// RPCPreference is the last RPC endpoint the user switched to.
type RPCPreference struct {
	Node *RPCNodeRef `json:"rpcNode,omitempty"`
	URL  string      `json:"url"`
}

func rpcKey(prod bool) string {
	if prod {
		return KeyRPCProd
	}
	return KeyRPCDev
}

// RPCPreference returns the stored preference, empty when missing or malformed.
func (s *Store) RPCPreference(prod bool) RPCPreference {
	var pref RPCPreference
	raw, ok := s.Get(rpcKey(prod))
	if !ok {
		return pref
	}
	if err := json.Unmarshal([]byte(raw), &pref); err != nil {
		return RPCPreference{}
	}
	return pref
}

// SetRPCPreference persists pref. The node's URL is blanked; pref.URL is authoritative.
func (s *Store) SetRPCPreference(prod bool, pref RPCPreference) error {
	if pref.Node != nil {
		node := *pref.Node
		node.URL = ""
		pref.Node = &node
	}
	data, err := json.Marshal(pref)
	if err != nil {
		return err
	}
	return s.Set(rpcKey(prod), string(data))
}

// Locale returns the stored language tag.
func (s *Store) Locale() (string, bool) {
	v, ok := s.Get(KeyLocale)
	return v, ok && v != ""
}

func (s *Store) SetLocale(lang string) error {
	return s.Set(KeyLocale, lang)
}

// DisplayTokenSettings controls which token sources appear in lists.
type DisplayTokenSettings struct {
	Official  bool
	Jup       bool
	UserAdded bool
}

// DefaultDisplayTokenSettings shows official and user-added tokens.
func DefaultDisplayTokenSettings() DisplayTokenSettings {
	return DisplayTokenSettings{Official: true, Jup: false, UserAdded: true}
}

// DisplayTokenSettings applies the stored user-added flag on top of the defaults.
func (s *Store) DisplayTokenSettings() DisplayTokenSettings {
	d := DefaultDisplayTokenSettings()
	if v, ok := s.Get(KeyUserAdded); ok && v != "" {
		d.UserAdded = v == "true"
	}
	return d
}

func (s *Store) SetUserAddedTokens(show bool) error {
	return s.Set(KeyUserAdded, strconv.FormatBool(show))
}

// TransactionFee returns the stored priority fee in SOL as entered.
func (s *Store) TransactionFee() (string, bool) {
	v, ok := s.Get(KeyTransactionFee)
	return v, ok && v != ""
}

func (s *Store) SetTransactionFee(fee string) error {
	return s.Set(KeyTransactionFee, fee)
}

// PriorityLevel returns the stored level index.
func (s *Store) PriorityLevel() (int, bool) {
	return s.intValue(KeyPriorityLevel)
}

func (s *Store) SetPriorityLevel(level int) error {
	return s.Set(KeyPriorityLevel, strconv.Itoa(level))
}

// PriorityMode returns the stored mode index.
func (s *Store) PriorityMode() (int, bool) {
	return s.intValue(KeyPriorityMode)
}

func (s *Store) SetPriorityMode(mode int) error {
	return s.Set(KeyPriorityMode, strconv.Itoa(mode))
}

func (s *Store) intValue(key string) (int, bool) {
	raw, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Explorer returns the stored block explorer base URL.
func (s *Store) Explorer() (string, bool) {
	v, ok := s.Get(KeyExplorer)
	return v, ok && v != ""
}

func (s *Store) SetExplorer(url string) error {
	return s.Set(KeyExplorer, url)
}

// APRMode is "M" or "D".
func (s *Store) APRMode() (string, bool) {
	v, ok := s.Get(KeyAPRMode)
	if !ok || (v != "M" && v != "D") {
		return "", false
	}
	return v, true
}

func (s *Store) SetAPRMode(mode string) error {
	return s.Set(KeyAPRMode, mode)
}

// Flag reads a boolean banner flag.
func (s *Store) Flag(key string) bool {
	v, _ := s.Get(key)
	return v == "true"
}

func (s *Store) SetFlag(key string, on bool) error {
	return s.Set(key, strconv.FormatBool(on))
}
