package settings

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PizzaHomicide/usercard/internal/domain"
	"github.com/PizzaHomicide/usercard/internal/log"
	"github.com/PizzaHomicide/usercard/internal/storage"
)

// StorageKey is the slot the user state is kept under
const StorageKey = "userStorage"

const userInfoKey = "userInfo"

// Accessor reads and writes the user state in a key-value store
type Accessor struct {
	store domain.KVStore
}

func New(store domain.KVStore) *Accessor {
	return &Accessor{store: store}
}

// DefaultSetting returns the profile used when nothing has been stored
func DefaultSetting() domain.UserState {
	return domain.UserState{
		UserInfo: domain.UserInfo{
			Avatar:      "https://im.geekcloud.cf/file/a1458af7daa4b627647ac.png",
			Name:        "zhuxindong",
			Description: `Star on <a href="https://github.com/zhuxindong/chatgpt-web" class="text-blue-500" target="_blank" >Github</a>`,
			Donate:      `<a href="https://im.geekcloud.cf/file/6b6087f8a88b99809c857.png" class="text-blue-500" target="_blank" >喜欢的话捐助一下吧</a>`,
		},
	}
}

// storedState holds the top level keys of a stored document.  Keys are matched exactly as written, unlike
// encoding/json struct decoding which ignores case.
type storedState map[string]json.RawMessage

// overlay replaces each top level key of state that is present and non-null in s
func (s storedState) overlay(state domain.UserState) (domain.UserState, error) {
	raw, ok := s[userInfoKey]
	if !ok || isNull(raw) {
		return state, nil
	}

	info, err := decodeUserInfo(raw)
	if err != nil {
		return state, err
	}
	state.UserInfo = info
	return state, nil
}

// decodeUserInfo decodes a stored userInfo object.  Fields missing from the object, or stored under a differently cased
// key, are left empty rather than taken from the defaults.
func decodeUserInfo(raw json.RawMessage) (domain.UserInfo, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.UserInfo{}, fmt.Errorf("%s is not an object: %w", userInfoKey, err)
	}

	var info domain.UserInfo
	targets := map[string]*string{
		"avatar":      &info.Avatar,
		"name":        &info.Name,
		"description": &info.Description,
		"donate":      &info.Donate,
	}
	for key, dst := range targets {
		value, ok := fields[key]
		if !ok || isNull(value) {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return domain.UserInfo{}, fmt.Errorf("%s.%s: %w", userInfoKey, key, err)
		}
	}
	return info, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// LoadLocalState returns the stored state laid over the defaults, or the error that prevented reading it.  Callers
// that write back what they read should use this rather than GetLocalState.
func (a *Accessor) LoadLocalState() (domain.UserState, error) {
	state := DefaultSetting()

	var stored storedState
	found, err := storage.GetJSON(a.store, StorageKey, &stored)
	if err != nil {
		return state, fmt.Errorf("failed to load user state: %w", err)
	}
	if !found {
		log.Debug("No stored user state, using defaults", "key", StorageKey)
		return state, nil
	}

	state, err = stored.overlay(state)
	if err != nil {
		return DefaultSetting(), fmt.Errorf("failed to load user state: %w", err)
	}

	log.Trace("Loaded user state", "key", StorageKey, "name", state.UserInfo.Name)
	return state, nil
}

// GetLocalState returns the stored state laid over the defaults.  Only top level keys are overlaid: a stored userInfo
// replaces the default one wholesale, its fields are never merged individually.
//
// It never fails.  Read errors and stored data that does not fit UserState are logged and the defaults returned.  In
// particular a userInfo that is not an object of strings (e.g. a bare string) yields the default userInfo rather than
// replacing it, since UserInfo cannot hold such a value.
func (a *Accessor) GetLocalState() domain.UserState {
	state, err := a.LoadLocalState()
	if err != nil {
		log.Warn("Unable to read stored user state, using defaults", "key", StorageKey, "error", err)
		return DefaultSetting()
	}
	return state
}

// SetLocalState stores setting under StorageKey, replacing whatever was there.  The only error returned is the
// store failing to persist the value.
func (a *Accessor) SetLocalState(setting domain.UserState) error {
	if err := storage.SetJSON(a.store, StorageKey, setting); err != nil {
		return fmt.Errorf("failed to save user state: %w", err)
	}

	log.Info("Saved user state", "key", StorageKey, "name", setting.UserInfo.Name)
	return nil
}

// ResetLocalState overwrites the stored state with the defaults
func (a *Accessor) ResetLocalState() error {
	return a.SetLocalState(DefaultSetting())
}

// ParseState decodes a user state document, e.g. one exported by `usercard show`.  Missing keys keep their default
// values, following the same overlay rules as GetLocalState.
func ParseState(data []byte) (domain.UserState, error) {
	var stored storedState
	if err := json.Unmarshal(data, &stored); err != nil {
		return domain.UserState{}, fmt.Errorf("invalid user state: %w", err)
	}

	state, err := stored.overlay(DefaultSetting())
	if err != nil {
		return domain.UserState{}, fmt.Errorf("invalid user state: %w", err)
	}
	return state, nil
}
